package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"villa_catalog/internal/app"
	"villa_catalog/internal/domain"
)

func TestTranslate_CacheMissThenHit(t *testing.T) {
	p := &fakeProvider{}
	store := newMemStore()
	svc := app.NewTranslationService(p, store)
	ctx := context.Background()

	// Miss (first time, populates cache)
	first, err := svc.Translate(ctx, "Piscine chauffée", "en", "fr")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	svc.Flush()

	// Hit
	second, err := svc.Translate(ctx, "Piscine chauffée", "en", "fr")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if first != second || first != "[en] Piscine chauffée" {
		t.Fatalf("unexpected results %q / %q", first, second)
	}
	if n := p.count(); n != 1 {
		t.Fatalf("expected exactly one provider call, got %d", n)
	}

	e, ok, _ := store.GetTranslation(ctx, app.ContentHash("Piscine chauffée"), "en")
	if !ok || e.OriginalText != "Piscine chauffée" || e.SourceLang != "fr" || e.CreatedAt.IsZero() {
		t.Fatalf("unexpected stored entry: %+v", e)
	}
}

func TestTranslate_RepeatWhileWriteBackPending(t *testing.T) {
	p := &fakeProvider{}
	store := newMemStore()
	store.putDelay = 30 * time.Millisecond
	svc := app.NewTranslationService(p, store)
	ctx := context.Background()

	first, err := svc.Translate(ctx, "Piscine", "en", "fr")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	second, err := svc.Translate(ctx, "Piscine", "en", "fr")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if first != second {
		t.Fatalf("results differ: %q / %q", first, second)
	}
	if n := p.count(); n != 1 {
		t.Fatalf("expected exactly one provider call, got %d", n)
	}

	svc.Flush()
	if store.len() != 1 {
		t.Fatalf("entry must be stored once the write lands")
	}
	if _, err := svc.Translate(ctx, "Piscine", "en", "fr"); err != nil || p.count() != 1 {
		t.Fatalf("stored entry must be served: calls=%d err=%v", p.count(), err)
	}
}

func TestTranslate_SharedCallSurvivesCancelledCaller(t *testing.T) {
	p := &fakeProvider{entered: make(chan struct{}, 1), hold: make(chan struct{})}
	svc := app.NewTranslationService(p, newMemStore())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Translate(ctx, "Jardin", "en", "fr")
		firstErr <- err
	}()
	<-p.entered

	var (
		wg     sync.WaitGroup
		second string
		err2   error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, err2 = svc.Translate(context.Background(), "Jardin", "en", "fr")
	}()

	cancel()
	if err := <-firstErr; !errors.Is(err, domain.ErrTranslation) || !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: got %v", err)
	}
	close(p.hold)
	wg.Wait()

	if err2 != nil || second != "[en] Jardin" {
		t.Fatalf("waiting caller must get the translation: %q, %v", second, err2)
	}
	if p.count() != 1 {
		t.Fatalf("expected one provider call, got %d", p.count())
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctxErr != nil {
		t.Fatalf("provider saw a cancelled context: %v", p.ctxErr)
	}
	svc.Flush()
}

func TestTranslate_DetectedSourceRecorded(t *testing.T) {
	store := newMemStore()
	svc := app.NewTranslationService(&fakeProvider{}, store)
	if _, err := svc.Translate(context.Background(), "Haute saison", "en", ""); err != nil {
		t.Fatalf("err: %v", err)
	}
	svc.Flush()
	e, ok, _ := store.GetTranslation(context.Background(), app.ContentHash("Haute saison"), "en")
	if !ok || e.SourceLang != "fr" {
		t.Fatalf("expected provider-detected source, got %+v", e)
	}
}

func TestTranslate_ProviderFailure(t *testing.T) {
	store := newMemStore()
	svc := app.NewTranslationService(&fakeProvider{fail: true}, store)
	_, err := svc.Translate(context.Background(), "Bonjour", "en", "fr")
	if !errors.Is(err, domain.ErrTranslation) {
		t.Fatalf("expected ErrTranslation, got %v", err)
	}
	svc.Flush()
	if store.len() != 0 || store.putCount != 0 {
		t.Fatalf("failed translations must not be cached")
	}
}

func TestTranslate_WriteFailureIsSwallowed(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("write token missing")
	svc := app.NewTranslationService(&fakeProvider{}, store)

	got, err := svc.Translate(context.Background(), "Bonjour", "en", "fr")
	if err != nil || got != "[en] Bonjour" {
		t.Fatalf("write failure must not affect the result: %q, %v", got, err)
	}
	svc.Flush()
	if store.putCount != 1 {
		t.Fatalf("expected one write attempt, got %d", store.putCount)
	}
}

func TestTranslate_ReadFailureIsAMiss(t *testing.T) {
	p := &fakeProvider{}
	store := newMemStore()
	store.getErr = errors.New("cache down")
	svc := app.NewTranslationService(p, store)

	if got, err := svc.Translate(context.Background(), "Bonjour", "en", "fr"); err != nil || got != "[en] Bonjour" {
		t.Fatalf("unexpected %q, %v", got, err)
	}
	svc.Flush()
	if p.count() != 1 {
		t.Fatalf("expected provider fallback on read failure")
	}
}

func TestTranslate_WriteBackOutlivesCaller(t *testing.T) {
	store := newMemStore()
	svc := app.NewTranslationService(&fakeProvider{}, store)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := svc.Translate(ctx, "Terrasse", "en", "fr"); err != nil {
		t.Fatalf("err: %v", err)
	}
	cancel()
	svc.Flush()
	if store.len() != 1 {
		t.Fatalf("write-back must survive caller cancellation")
	}
}

func TestTranslate_NoStore(t *testing.T) {
	p := &fakeProvider{}
	svc := app.NewTranslationService(p, nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.Translate(context.Background(), "Bonjour", "en", "fr"); err != nil {
			t.Fatalf("err: %v", err)
		}
	}
	svc.Flush()
	if p.count() != 2 {
		t.Fatalf("without a store every call reaches the provider, got %d", p.count())
	}
}

func TestTranslate_EdgeInputs(t *testing.T) {
	p := &fakeProvider{}
	svc := app.NewTranslationService(p, newMemStore())

	if got, err := svc.Translate(context.Background(), "  \n", "en", ""); err != nil || got != "  \n" {
		t.Fatalf("blank text must come back unchanged: %q, %v", got, err)
	}
	if _, err := svc.Translate(context.Background(), "Bonjour", " ", ""); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty target, got %v", err)
	}
	if p.count() != 0 {
		t.Fatalf("edge inputs must not reach the provider")
	}
}

func TestContentHash_Stable(t *testing.T) {
	const abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := app.ContentHash("abc"); got != abc {
		t.Fatalf("sha256(abc) = %s", got)
	}
	if app.ContentHash("Villa Éden") != app.ContentHash("Villa Éden") {
		t.Fatalf("hash must be stable")
	}
	if app.ContentHash("Villa Éden") == app.ContentHash("Villa Eden") {
		t.Fatalf("one differing character must change the hash")
	}
}
