package domain

import "context"

// ContentStore reads villas from the hosted content repository. Failures
// degrade to empty/absent results; implementations log instead of returning errors.
type ContentStore interface {
	AllVillas(ctx context.Context) []Villa
	VillaByID(ctx context.Context, id string) (Villa, bool)
	VillaBySlug(ctx context.Context, slug string) (Villa, bool)
}

type TranslationProvider interface {
	// Translate translates text into targetLang. An empty sourceLang asks the
	// provider to detect it.
	Translate(ctx context.Context, text, targetLang, sourceLang string) (ProviderResult, error)
}

// TranslationStore holds cached translations. Writes for the same key are
// last-write-wins.
type TranslationStore interface {
	GetTranslation(ctx context.Context, contentHash, targetLang string) (TranslationEntry, bool, error)
	PutTranslation(ctx context.Context, e TranslationEntry) error
}

type Translator interface {
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
}

// Inquiry is a booking or sales request submitted from a villa page.
type Inquiry struct {
	Reference string `json:"reference"`
	VillaID   string `json:"villaId"`
	Kind      string `json:"kind"` // booking|sale
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CheckIn   string `json:"checkIn,omitempty"`
	CheckOut  string `json:"checkOut,omitempty"`
	Guests    int    `json:"guests,omitempty"`
	Message   string `json:"message,omitempty"`
	Language  string `json:"language,omitempty"`
}
