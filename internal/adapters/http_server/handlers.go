// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"villa_catalog/internal/adapters/observability"
	"villa_catalog/internal/app"
	"villa_catalog/internal/domain"
)

const (
	maxTranslateBody = 64 << 10
	maxInquiryBody   = 32 << 10
	maxTranslateText = 20000
)

// BrochureRenderer turns a brochure model into PDF bytes.
type BrochureRenderer interface {
	Render(ctx context.Context, m app.BrochureModel) ([]byte, error)
}

type Handlers struct {
	Catalog    *app.CatalogService
	Projector  *app.Projector
	Translator domain.Translator
	Inquiries  *app.InquiryService
	Brochures  BrochureRenderer
	Agency     app.AgencyContact
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/villas", h.listVillas)
		r.Get("/villas/featured", h.featuredVillas)
		r.Get("/villas/slug/{slug}", h.getVillaBySlug)
		r.Get("/villas/{id}", h.getVilla)
		r.Get("/facets", h.facets)
		r.Post("/translate", h.translate)
		r.Get("/brochure", h.brochure)
		r.Post("/inquiries", h.submitInquiry)
	})
}

var langMatcher = language.NewMatcher([]language.Tag{language.French, language.English})

// selectLang prefers ?lang=, then Accept-Language, then the native language.
func selectLang(r *http.Request) string {
	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang"))); q != "" {
		for _, l := range domain.SupportedLangs {
			if q == l {
				return l
			}
		}
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return domain.NativeLang
	}
	tag, _, conf := langMatcher.Match(tags...)
	if conf == language.No {
		return domain.NativeLang
	}
	base, _ := tag.Base()
	return base.String()
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	msg := detail
	if msg == "" {
		msg = title
	}
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Error: msg}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON sends v with an ETag and answers 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, lang string, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	if lang != "" {
		w.Header().Set("Content-Language", lang)
	}
	w.Header().Set("Vary", "Accept-Language")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// writeStatusJSON sends an uncached JSON answer.
func writeStatusJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func parseFilters(r *http.Request, mode domain.ListingMode) (app.FilterState, error) {
	q := r.URL.Query()
	f := app.DefaultFilterState(mode)
	if loc := strings.TrimSpace(q.Get("location")); loc != "" {
		f.Location = loc
	}
	if g := q.Get("guests"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil || n < 0 {
			return f, errors.New("guests must be a non-negative integer")
		}
		f.Guests = n
	}
	if p := q.Get("price"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return f, errors.New("price must be a non-negative integer")
		}
		f.Price = n
	}
	for _, a := range strings.Split(q.Get("amenities"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			f.Amenities = append(f.Amenities, a)
		}
	}
	return f, nil
}

func (h *Handlers) listVillas(w http.ResponseWriter, r *http.Request) {
	mode := domain.ParseListingMode(r.URL.Query().Get("mode"))
	f, err := parseFilters(r, mode)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	lang := selectLang(r)
	writeJSON(w, r, lang, h.Catalog.Browse(r.Context(), mode, f, lang))
}

func (h *Handlers) featuredVillas(w http.ResponseWriter, r *http.Request) {
	lang := selectLang(r)
	featured := app.Featured(h.Catalog.AllVillas(r.Context()).Villas)
	writeJSON(w, r, lang, map[string]any{"villas": h.Catalog.ProjectAll(r.Context(), featured, lang)})
}

func (h *Handlers) getVilla(w http.ResponseWriter, r *http.Request) {
	h.writeVilla(w, r, h.Catalog.Villa(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handlers) getVillaBySlug(w http.ResponseWriter, r *http.Request) {
	h.writeVilla(w, r, h.Catalog.VillaBySlug(r.Context(), chi.URLParam(r, "slug")))
}

func (h *Handlers) writeVilla(w http.ResponseWriter, r *http.Request, st app.VillaState) {
	if st.Err != nil || st.Villa == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "villa not found")
		return
	}
	lang := selectLang(r)
	writeJSON(w, r, lang, h.Projector.TranslateVilla(r.Context(), *st.Villa, lang))
}

func (h *Handlers) facets(w http.ResponseWriter, r *http.Request) {
	mode := domain.ParseListingMode(r.URL.Query().Get("mode"))
	limit := 8
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 50 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 50")
			return
		}
		limit = l
	}
	all := h.Catalog.AllVillas(r.Context()).Villas
	writeJSON(w, r, "", map[string]any{
		"mode":           mode,
		"locations":      app.DeriveLocations(all, mode),
		"amenities":      app.DeriveTopAmenities(all, mode, limit),
		"priceUnlimited": app.PriceUnlimited(mode),
		"defaults":       app.DefaultFilterState(mode),
	})
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
	SourceLang string `json:"sourceLang,omitempty"`
}

func (h *Handlers) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxTranslateBody)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON {text, targetLang, sourceLang?}")
		return
	}
	if req.TargetLang == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "targetLang is required")
		return
	}
	if len(req.Text) > maxTranslateText {
		writeProblem(w, http.StatusRequestEntityTooLarge, "Text too long", "text exceeds "+strconv.Itoa(maxTranslateText)+" bytes")
		return
	}
	out, err := h.Translator.Translate(r.Context(), req.Text, req.TargetLang, req.SourceLang)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
			return
		}
		log.Error().Err(err).Str("target", req.TargetLang).Msg("translate failed")
		writeProblem(w, http.StatusBadGateway, "Translation failed", "translation provider error")
		return
	}
	writeStatusJSON(w, http.StatusOK, map[string]string{"translatedText": out})
}

func (h *Handlers) brochure(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Missing id", "query parameter id is required")
		return
	}
	st := h.Catalog.Villa(r.Context(), id)
	if st.Err != nil || st.Villa == nil {
		observability.ObserveBrochure("not_found")
		writeProblem(w, http.StatusNotFound, "Not Found", "villa not found")
		return
	}
	lang := selectLang(r)
	model := app.BuildBrochureModel(*st.Villa, lang, h.Agency)
	pdf, err := h.Brochures.Render(r.Context(), model)
	if err != nil {
		observability.ObserveBrochure("error")
		log.Error().Err(err).Str("villa", id).Msg("brochure generation failed")
		writeProblem(w, http.StatusInternalServerError, "Brochure generation failed", "could not generate brochure")
		return
	}
	observability.ObserveBrochure("ok")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+model.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Error().Err(err).Msg("failed to write brochure body")
	}
}

func (h *Handlers) submitInquiry(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxInquiryBody))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "could not read body")
		return
	}
	in, err := h.Inquiries.Submit(r.Context(), body)
	switch {
	case errors.Is(err, domain.ErrInvalid):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid inquiry", err.Error())
		return
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "villa not found")
		return
	case err != nil:
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "inquiry could not be submitted")
		return
	}
	writeStatusJSON(w, http.StatusAccepted, map[string]string{"reference": in.Reference, "status": "received"})
}
