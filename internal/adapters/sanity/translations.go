package sanity

import (
	"context"
	"time"

	"villa_catalog/internal/adapters/observability"
	"villa_catalog/internal/domain"
)

// TranslationStore keeps translation cache entries as "translationCache"
// documents in the content repository.
type TranslationStore struct {
	c          *Client
	writeToken string
}

func NewTranslationStore(c *Client, writeToken string) *TranslationStore {
	return &TranslationStore{c: c, writeToken: writeToken}
}

type translationDoc struct {
	ContentHash    string `json:"contentHash"`
	TargetLang     string `json:"targetLang"`
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	SourceLang     string `json:"sourceLang"`
	CreatedAt      string `json:"createdAt"`
}

func (s *TranslationStore) GetTranslation(ctx context.Context, hash, lang string) (domain.TranslationEntry, bool, error) {
	var doc *translationDoc
	// live API, not the CDN: entries written a moment ago must be visible
	token := s.c.cfg.Token
	if token == "" {
		token = s.writeToken
	}
	err := s.c.query(ctx, s.c.apiBase, token, translationQuery, map[string]any{"hash": hash, "lang": lang}, &doc)
	if err != nil {
		return domain.TranslationEntry{}, false, err
	}
	if doc == nil || doc.TranslatedText == "" {
		observability.ObserveCache("sanity", "miss")
		return domain.TranslationEntry{}, false, nil
	}
	observability.ObserveCache("sanity", "hit")
	created, _ := time.Parse(time.RFC3339, doc.CreatedAt)
	return domain.TranslationEntry{
		ContentHash:    doc.ContentHash,
		TargetLang:     doc.TargetLang,
		OriginalText:   doc.OriginalText,
		TranslatedText: doc.TranslatedText,
		SourceLang:     doc.SourceLang,
		CreatedAt:      created,
	}, true, nil
}

// PutTranslation replaces the document for (hash, lang); the id is derived
// from the key so concurrent writers converge on one document.
func (s *TranslationStore) PutTranslation(ctx context.Context, e domain.TranslationEntry) error {
	observability.ObserveCache("sanity", "set")
	doc := map[string]any{
		"_id":            TranslationDocID(e.ContentHash, e.TargetLang),
		"_type":          "translationCache",
		"contentHash":    e.ContentHash,
		"targetLang":     e.TargetLang,
		"originalText":   e.OriginalText,
		"translatedText": e.TranslatedText,
		"sourceLang":     e.SourceLang,
		"createdAt":      e.CreatedAt.UTC().Format(time.RFC3339),
	}
	return s.c.mutate(ctx, s.writeToken, []map[string]any{{"createOrReplace": doc}})
}

func TranslationDocID(hash, lang string) string {
	short := hash
	if len(short) > 32 {
		short = short[:32]
	}
	return "translation-" + short + "-" + lang
}
