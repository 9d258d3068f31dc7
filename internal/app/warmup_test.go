package app_test

import (
	"context"
	"testing"

	"villa_catalog/internal/app"
)

func TestWarmVilla_FillsCacheForForeignLanguages(t *testing.T) {
	p := &fakeProvider{}
	store := newMemStore()
	tr := app.NewTranslationService(p, store)
	w := app.NewWarmupService(app.NewProjector(tr))

	w.WarmVilla(context.Background(), frenchVilla(), []string{"fr", "en"})
	tr.Flush()
	first := p.count()
	if first == 0 || store.len() != first {
		t.Fatalf("expected every translated field cached, calls=%d cached=%d", first, store.len())
	}
	for _, c := range p.calls {
		if c.target != "en" {
			t.Fatalf("native language must be skipped, saw target %q", c.target)
		}
	}

	// a second pass is served from the cache
	w.WarmVilla(context.Background(), frenchVilla(), []string{"en"})
	tr.Flush()
	if p.count() != first {
		t.Fatalf("second warm-up must not reach the provider, calls=%d", p.count())
	}
}

func TestWarmVilla_StopsOnCancel(t *testing.T) {
	p := &fakeProvider{}
	w := app.NewWarmupService(app.NewProjector(app.NewTranslationService(p, newMemStore())))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.WarmVilla(ctx, frenchVilla(), []string{"en"})
	if p.count() != 0 {
		t.Fatalf("cancelled warm-up must not translate")
	}
}
