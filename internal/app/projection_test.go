package app_test

import (
	"context"
	"testing"

	"villa_catalog/internal/app"
	"villa_catalog/internal/domain"
)

func frenchVilla() domain.Villa {
	return domain.Villa{
		ID:              "v1",
		ListingType:     domain.ModeRent,
		Name:            domain.LocalizedText{"fr": "Villa Soleil", "en": "Sun Villa"},
		Description:     domain.LocalizedText{"fr": "Vue mer exceptionnelle"},
		FullDescription: domain.LocalizedText{"fr": "Une villa lumineuse."},
		PriceNote:       domain.LocalizedText{"fr": "Taxes incluses"},
		Amenities:       []domain.Amenity{{Name: "Piscine", Icon: "pool"}},
		HomeFeatures:    []domain.HomeFeature{{Title: "Terrasse", Description: "Grande terrasse"}},
		SeasonalPrices: []domain.SeasonalPrice{
			{SeasonName: "Haute saison", Dates: "15/12 - 15/04", Prices: []domain.PriceTier{{Bedrooms: 3, Price: 20000}}},
			{SeasonName: "St Barth Bucket", Dates: "Mars"},
			{SeasonName: "Les Voiles Regatta", Dates: ""},
		},
		PricePerWeek: ptr(20000),
	}
}

func TestTranslateVilla_ProviderFailureFallsBack(t *testing.T) {
	tr := app.NewTranslationService(&fakeProvider{fail: true}, newMemStore())
	got := app.NewProjector(tr).TranslateVilla(context.Background(), frenchVilla(), "en")
	if got.Description != "Vue mer exceptionnelle" {
		t.Fatalf("expected French fallback, got %q", got.Description)
	}
	if got.Amenities[0].Name != "Piscine" || got.SeasonalPrices[0].SeasonName != "Haute saison" {
		t.Fatalf("every field must fall back: %+v", got)
	}
	if got.Language != "en" || got.Name != "Sun Villa" {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
}

func TestTranslateVilla_TranslatesFields(t *testing.T) {
	p := &fakeProvider{}
	tr := app.NewTranslationService(p, newMemStore())
	v := frenchVilla()
	got := app.NewProjector(tr).TranslateVilla(context.Background(), v, "en")
	tr.Flush()

	checks := []struct{ got, want string }{
		{got.Description, "[en] Vue mer exceptionnelle"},
		{got.FullDescription, "[en] Une villa lumineuse."},
		{got.PriceNote, "[en] Taxes incluses"},
		{got.Amenities[0].Name, "[en] Piscine"},
		{got.HomeFeatures[0].Title, "[en] Terrasse"},
		{got.SeasonalPrices[0].SeasonName, "[en] Haute saison"},
		{got.SeasonalPrices[0].Dates, "[en] 15/12 - 15/04"},
		{got.SeasonalPrices[1].SeasonName, "St Barth Bucket"},
		{got.SeasonalPrices[1].Dates, "[en] Mars"},
		{got.SeasonalPrices[2].SeasonName, "Les Voiles Regatta"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("got %q want %q", c.got, c.want)
		}
	}

	src := p.sources()
	if src["Vue mer exceptionnelle"] != "fr" {
		t.Errorf("native fields must pass the native source, got %q", src["Vue mer exceptionnelle"])
	}
	if s, ok := src["Haute saison"]; !ok || s != "" {
		t.Errorf("season labels must auto-detect, got %q (sent=%v)", s, ok)
	}
	if _, ok := src["St Barth Bucket"]; ok {
		t.Errorf("event names must never be sent")
	}

	// the source villa is untouched
	if v.Amenities[0].Name != "Piscine" || v.SeasonalPrices[0].SeasonName != "Haute saison" {
		t.Fatalf("source villa mutated: %+v", v)
	}
}

func TestTranslateVilla_NativeFastPath(t *testing.T) {
	p := &fakeProvider{}
	tr := app.NewTranslationService(p, newMemStore())
	legacy := "Vue mer"
	v := domain.Villa{
		ID:          "v2",
		Name:        domain.LocalizedText{"fr": "Villa", "en": "Villa"},
		Description: domain.LocalizedText{"fr": legacy, "en": legacy},
	}
	got := app.NewProjector(tr).TranslateVilla(context.Background(), v, "fr")
	if got.Description != legacy {
		t.Fatalf("round trip changed description: %q", got.Description)
	}
	if p.count() != 0 {
		t.Fatalf("native projection must not call the provider")
	}

	// empty language means native
	if got := app.NewProjector(tr).TranslateVilla(context.Background(), v, ""); got.Language != "fr" {
		t.Fatalf("expected native language, got %q", got.Language)
	}
}

func TestTranslateVilla_NilTranslator(t *testing.T) {
	got := app.NewProjector(nil).TranslateVilla(context.Background(), frenchVilla(), "en")
	if got.Description != "Vue mer exceptionnelle" || got.Price == nil || got.Price.Amount != 20000 {
		t.Fatalf("unexpected view: %+v", got)
	}
}
