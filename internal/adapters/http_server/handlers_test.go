package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	server "villa_catalog/internal/adapters/http_server"
	"villa_catalog/internal/app"
	"villa_catalog/internal/domain"
)

// ---- fakes ----

type fakeStore struct{ villas []domain.Villa }

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

type fakeProvider struct{ fail bool }

func (p *fakeProvider) Translate(ctx context.Context, text, target, source string) (domain.ProviderResult, error) {
	if p.fail {
		return domain.ProviderResult{}, errors.New("quota exceeded")
	}
	return domain.ProviderResult{Text: strings.ToUpper(text)}, nil
}

type fakeRenderer struct {
	err  error
	last app.BrochureModel
}

func (r *fakeRenderer) Render(ctx context.Context, m app.BrochureModel) ([]byte, error) {
	r.last = m
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.3 fake"), nil
}

func ptr[T any](v T) *T { return &v }

func catalog() []domain.Villa {
	return []domain.Villa{
		{
			ID: "a", Slug: "villa-a", ListingType: domain.ModeRent,
			Name:         domain.LocalizedText{"fr": "Villa Éden", "en": "Eden Villa"},
			Description:  domain.LocalizedText{"fr": "vue mer"},
			Location:     domain.Location{Name: "Flamands"},
			Guests:       6,
			PricePerWeek: ptr(15000),
			Amenities:    []domain.Amenity{{Name: "Wifi"}, {Name: "Pool"}},
			SalePrice:    nil,
		},
		{
			ID: "b", Slug: "villa-b", ListingType: domain.ModeRent,
			Name:               domain.LocalizedText{"fr": "Villa B"},
			Location:           domain.Location{Name: "Gustavia"},
			Guests:             10,
			PricePerWeek:       ptr(95000),
			Amenities:          []domain.Amenity{{Name: "Wifi"}},
			FeaturedOnHomepage: true,
		},
		{ID: "s", Slug: "villa-s", ListingType: domain.ModeSale, Name: domain.LocalizedText{"fr": "Villa S"}, SalePrice: ptr(2_000_000)},
	}
}

type harness struct {
	ts       *httptest.Server
	renderer *fakeRenderer
}

func newHarness(t *testing.T, providerFails bool) *harness {
	t.Helper()
	store := &fakeStore{villas: catalog()}
	tr := app.NewTranslationService(&fakeProvider{fail: providerFails}, nil)
	projector := app.NewProjector(tr)
	rnd := &fakeRenderer{}

	srv := server.New(nil)
	srv.MountHandlers(&server.Handlers{
		Catalog:    app.NewCatalogService(store, projector),
		Projector:  projector,
		Translator: tr,
		Inquiries:  app.NewInquiryService(store),
		Brochures:  rnd,
		Agency:     app.AgencyContact{Name: "Agence"},
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return &harness{ts: ts, renderer: rnd}
}

func (h *harness) do(t *testing.T, method, path, body string, hdr map[string]string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.ts.URL+path, rdr)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode(t *testing.T, res *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func expectProblem(t *testing.T, res *http.Response, status int) {
	t.Helper()
	if res.StatusCode != status {
		t.Fatalf("status %d, want %d", res.StatusCode, status)
	}
	var p struct {
		Status int    `json:"status"`
		Error  string `json:"error"`
	}
	decode(t, res, &p)
	if p.Status != status || p.Error == "" {
		t.Fatalf("expected structured error body, got %+v", p)
	}
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	h := newHarness(t, false)
	if res := h.do(t, http.MethodGet, "/healthz", "", nil); res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
}

func TestListVillas_Filters(t *testing.T) {
	h := newHarness(t, false)

	res := h.do(t, http.MethodGet, "/api/villas?mode=rent&amenities=Wifi", "", nil)
	var l app.Listing
	decode(t, res, &l)
	if l.Total != 2 || len(l.Villas) != 2 {
		t.Fatalf("expected both rentals, got %+v", l)
	}

	res = h.do(t, http.MethodGet, "/api/villas?mode=rent&amenities=Wifi,Pool", "", nil)
	decode(t, res, &l)
	if l.Total != 1 || l.Villas[0].ID != "a" {
		t.Fatalf("expected only villa a, got %+v", l.Villas)
	}

	res = h.do(t, http.MethodGet, "/api/villas?mode=sale", "", nil)
	decode(t, res, &l)
	if l.Total != 1 || l.Villas[0].ID != "s" || l.Filters.Price != app.SalePriceUnlimited {
		t.Fatalf("unexpected sale listing %+v", l)
	}
}

func TestListVillas_BadFilter(t *testing.T) {
	h := newHarness(t, false)
	expectProblem(t, h.do(t, http.MethodGet, "/api/villas?guests=many", "", nil), http.StatusBadRequest)
}

func TestGetVilla_LanguageAndETag(t *testing.T) {
	h := newHarness(t, false)

	res := h.do(t, http.MethodGet, "/api/villas/a", "", map[string]string{"Accept-Language": "en-US,en;q=0.9"})
	if res.StatusCode != http.StatusOK || res.Header.Get("Content-Language") != "en" {
		t.Fatalf("status %d lang %q", res.StatusCode, res.Header.Get("Content-Language"))
	}
	var v domain.VillaView
	decode(t, res, &v)
	if v.Name != "Eden Villa" || v.Description != "VUE MER" {
		t.Fatalf("unexpected view %+v", v)
	}

	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	res = h.do(t, http.MethodGet, "/api/villas/a?lang=en", "", map[string]string{"If-None-Match": etag})
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res.StatusCode)
	}

	// lang param beats the header, unknown languages fall back to French
	res = h.do(t, http.MethodGet, "/api/villas/a?lang=fr", "", map[string]string{"Accept-Language": "en"})
	decode(t, res, &v)
	if v.Language != "fr" || v.Description != "vue mer" {
		t.Fatalf("unexpected view %+v", v)
	}
	res = h.do(t, http.MethodGet, "/api/villas/a", "", map[string]string{"Accept-Language": "ja"})
	if res.Header.Get("Content-Language") != "fr" {
		t.Fatalf("expected fr default, got %q", res.Header.Get("Content-Language"))
	}
}

func TestGetVilla_TranslationFailureFallsBack(t *testing.T) {
	h := newHarness(t, true)
	res := h.do(t, http.MethodGet, "/api/villas/slug/villa-a?lang=en", "", nil)
	var v domain.VillaView
	decode(t, res, &v)
	if res.StatusCode != http.StatusOK || v.Description != "vue mer" {
		t.Fatalf("expected native fallback, status=%d view=%+v", res.StatusCode, v)
	}
}

func TestGetVilla_NotFound(t *testing.T) {
	h := newHarness(t, false)
	expectProblem(t, h.do(t, http.MethodGet, "/api/villas/nope", "", nil), http.StatusNotFound)
	expectProblem(t, h.do(t, http.MethodGet, "/api/villas/slug/nope", "", nil), http.StatusNotFound)
}

func TestFeatured(t *testing.T) {
	h := newHarness(t, false)
	var body struct {
		Villas []domain.VillaView `json:"villas"`
	}
	decode(t, h.do(t, http.MethodGet, "/api/villas/featured", "", nil), &body)
	if len(body.Villas) != 1 || body.Villas[0].ID != "b" {
		t.Fatalf("unexpected featured %+v", body.Villas)
	}
}

func TestFacets(t *testing.T) {
	h := newHarness(t, false)
	var body struct {
		Locations      []string `json:"locations"`
		Amenities      []string `json:"amenities"`
		PriceUnlimited int      `json:"priceUnlimited"`
	}
	decode(t, h.do(t, http.MethodGet, "/api/facets?mode=rent&limit=1", "", nil), &body)
	if len(body.Locations) != 3 || len(body.Amenities) != 1 || body.Amenities[0] != "Wifi" || body.PriceUnlimited != app.RentPriceUnlimited {
		t.Fatalf("unexpected facets %+v", body)
	}
	expectProblem(t, h.do(t, http.MethodGet, "/api/facets?limit=0", "", nil), http.StatusBadRequest)
}

func TestTranslateEndpoint(t *testing.T) {
	h := newHarness(t, false)
	res := h.do(t, http.MethodPost, "/api/translate", `{"text":"bonjour","targetLang":"en"}`, nil)
	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	decode(t, res, &out)
	if res.StatusCode != http.StatusOK || out.TranslatedText != "BONJOUR" {
		t.Fatalf("status %d body %+v", res.StatusCode, out)
	}

	expectProblem(t, h.do(t, http.MethodPost, "/api/translate", `not json`, nil), http.StatusBadRequest)
	expectProblem(t, h.do(t, http.MethodPost, "/api/translate", `{"text":"x"}`, nil), http.StatusBadRequest)

	failing := newHarness(t, true)
	expectProblem(t, failing.do(t, http.MethodPost, "/api/translate", `{"text":"bonjour","targetLang":"en"}`, nil), http.StatusBadGateway)
}

func TestBrochure(t *testing.T) {
	h := newHarness(t, false)

	res := h.do(t, http.MethodGet, "/api/brochure?id=a&lang=en", "", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type %q", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); cd != `attachment; filename="villa-eden-villa-brochure.pdf"` {
		t.Fatalf("content disposition %q", cd)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.HasPrefix(string(b), "%PDF") {
		t.Fatalf("unexpected body %q", b)
	}
	if h.renderer.last.Language != "en" || h.renderer.last.Agency.Name != "Agence" {
		t.Fatalf("unexpected model %+v", h.renderer.last)
	}

	expectProblem(t, h.do(t, http.MethodGet, "/api/brochure", "", nil), http.StatusBadRequest)
	expectProblem(t, h.do(t, http.MethodGet, "/api/brochure?id=ghost", "", nil), http.StatusNotFound)

	h.renderer.err = errors.New("layout failed")
	expectProblem(t, h.do(t, http.MethodGet, "/api/brochure?id=a", "", nil), http.StatusInternalServerError)
}

func TestInquiries(t *testing.T) {
	h := newHarness(t, false)

	res := h.do(t, http.MethodPost, "/api/inquiries", `{"villaId":"s","kind":"sale","name":"Ana","email":"ana@example.com"}`, nil)
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("status %d", res.StatusCode)
	}
	var out struct {
		Reference string `json:"reference"`
	}
	decode(t, res, &out)
	if out.Reference == "" {
		t.Fatalf("missing reference")
	}

	expectProblem(t, h.do(t, http.MethodPost, "/api/inquiries", `{"villaId":"s"}`, nil), http.StatusUnprocessableEntity)
	expectProblem(t, h.do(t, http.MethodPost, "/api/inquiries", `{"villaId":"zz","kind":"sale","name":"A","email":"a@b.co"}`, nil), http.StatusNotFound)
}
