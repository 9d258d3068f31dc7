package domain

import "time"

// TranslationEntry is a cached translation keyed by (ContentHash, TargetLang).
type TranslationEntry struct {
	ContentHash    string    `json:"contentHash"`
	TargetLang     string    `json:"targetLang"`
	OriginalText   string    `json:"originalText"`
	TranslatedText string    `json:"translatedText"`
	SourceLang     string    `json:"sourceLang,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ProviderResult is what a translation provider returns for one text.
type ProviderResult struct {
	Text               string
	DetectedSourceLang string
}
