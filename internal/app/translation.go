package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"villa_catalog/internal/domain"
)

const writeBackTimeout = 5 * time.Second

// ContentHash is the hex SHA-256 of the exact source text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// TranslationService is a cache-aside translator: store first, provider on
// miss, asynchronous write-back.
type TranslationService struct {
	provider domain.TranslationProvider
	store    domain.TranslationStore
	now      func() time.Time

	group   singleflight.Group
	pending sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]domain.TranslationEntry // hash:lang, written back but not yet stored
}

func NewTranslationService(p domain.TranslationProvider, s domain.TranslationStore) *TranslationService {
	return &TranslationService{
		provider: p,
		store:    s,
		now:      time.Now,
		inflight: map[string]domain.TranslationEntry{},
	}
}

func (s *TranslationService) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	targetLang = strings.ToLower(strings.TrimSpace(targetLang))
	if targetLang == "" {
		return "", fmt.Errorf("%w: target language is required", domain.ErrInvalid)
	}
	hash := ContentHash(text)
	key := hash + ":" + targetLang

	if e, ok := s.unstored(key); ok {
		return e.TranslatedText, nil
	}
	if s.store != nil {
		e, ok, err := s.store.GetTranslation(ctx, hash, targetLang)
		if err != nil {
			log.Warn().Err(err).Str("hash", hash[:12]).Str("lang", targetLang).Msg("translation cache read failed")
		} else if ok {
			return e.TranslatedText, nil
		}
	}

	// the shared call must not die with whichever caller started it
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		res, err := s.provider.Translate(shared, text, targetLang, sourceLang)
		if err != nil {
			return nil, err
		}
		src := sourceLang
		if src == "" {
			src = res.DetectedSourceLang
		}
		s.writeBack(shared, domain.TranslationEntry{
			ContentHash:    hash,
			TargetLang:     targetLang,
			OriginalText:   text,
			TranslatedText: res.Text,
			SourceLang:     src,
			CreatedAt:      s.now().UTC(),
		})
		return res.Text, nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", domain.ErrTranslation, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrTranslation, r.Err)
		}
		return r.Val.(string), nil
	}
}

func (s *TranslationService) unstored(key string) (domain.TranslationEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.inflight[key]
	return e, ok
}

// writeBack stores e in the background. It outlives the caller's context.
// Until the store answers, e is served from memory.
func (s *TranslationService) writeBack(ctx context.Context, e domain.TranslationEntry) {
	if s.store == nil {
		return
	}
	key := e.ContentHash + ":" + e.TargetLang
	s.mu.Lock()
	s.inflight[key] = e
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, key)
			s.mu.Unlock()
		}()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeBackTimeout)
		defer cancel()
		if err := s.store.PutTranslation(wctx, e); err != nil {
			log.Warn().Err(err).
				Str("hash", e.ContentHash[:12]).
				Str("lang", e.TargetLang).
				Msg("translation cache write failed")
		}
	}()
}

// Flush blocks until every pending cache write has finished.
func (s *TranslationService) Flush() { s.pending.Wait() }
