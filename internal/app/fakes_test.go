package app_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"villa_catalog/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	villas []domain.Villa
}

func (f *fakeStore) AllVillas(ctx context.Context) []domain.Villa { return f.villas }

func (f *fakeStore) VillaByID(ctx context.Context, id string) (domain.Villa, bool) {
	for _, v := range f.villas {
		if v.ID == id {
			return v, true
		}
	}
	return domain.Villa{}, false
}

func (f *fakeStore) VillaBySlug(ctx context.Context, slug string) (domain.Villa, bool) {
	for _, v := range f.villas {
		if v.Slug == slug {
			return v, true
		}
	}
	return domain.Villa{}, false
}

type providerCall struct {
	text, target, source string
}

// fakeProvider prefixes text with the target language, or fails.
// With hold set, each call signals entered and then blocks until hold is closed.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []providerCall
	fail    bool
	entered chan struct{}
	hold    chan struct{}
	ctxErr  error
}

func (p *fakeProvider) Translate(ctx context.Context, text, target, source string) (domain.ProviderResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, providerCall{text, target, source})
	p.mu.Unlock()
	if p.hold != nil {
		p.entered <- struct{}{}
		<-p.hold
		p.mu.Lock()
		p.ctxErr = ctx.Err()
		p.mu.Unlock()
	}
	if p.fail {
		return domain.ProviderResult{}, errors.New("provider down")
	}
	return domain.ProviderResult{Text: "[" + target + "] " + text, DetectedSourceLang: "fr"}, nil
}

func (p *fakeProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakeProvider) sources() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[string]string{}
	for _, c := range p.calls {
		out[c.text] = c.source
	}
	return out
}

type memStore struct {
	mu       sync.Mutex
	entries  map[string]domain.TranslationEntry
	getErr   error
	putErr   error
	putDelay time.Duration
	putCount int
}

func newMemStore() *memStore { return &memStore{entries: map[string]domain.TranslationEntry{}} }

func (s *memStore) GetTranslation(ctx context.Context, hash, lang string) (domain.TranslationEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return domain.TranslationEntry{}, false, s.getErr
	}
	e, ok := s.entries[hash+":"+lang]
	return e, ok, nil
}

func (s *memStore) PutTranslation(ctx context.Context, e domain.TranslationEntry) error {
	if s.putDelay > 0 {
		time.Sleep(s.putDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCount++
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[e.ContentHash+":"+e.TargetLang] = e
	return nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func ptr[T any](v T) *T { return &v }
