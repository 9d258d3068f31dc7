package app

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"villa_catalog/internal/domain"
)

// Season labels containing these are proper nouns (event names) and are never translated.
var untranslatedSeasonWords = []string{"bucket", "regatta"}

// Projector resolves villas into one language, translating native content
// through a Translator.
type Projector struct {
	tr domain.Translator
}

func NewProjector(tr domain.Translator) *Projector { return &Projector{tr: tr} }

// job is one text to translate and where to put the result. On failure the
// destination keeps the source text.
type job struct {
	src string
	dst *string
}

// TranslateVilla returns v with every text field in lang. It never fails:
// fields whose translation fails keep their native text.
func (p *Projector) TranslateVilla(ctx context.Context, v domain.Villa, lang string) domain.VillaView {
	native := v.Lang()
	if lang == "" {
		lang = native
	}
	out := baseView(v, lang)
	if lang == native || p.tr == nil {
		return out
	}

	var nativeJobs []job
	add := func(dst *string) {
		if strings.TrimSpace(*dst) != "" {
			nativeJobs = append(nativeJobs, job{src: *dst, dst: dst})
		}
	}
	add(&out.Description)
	add(&out.FullDescription)
	add(&out.PriceNote)
	for i := range out.HomeFeatures {
		add(&out.HomeFeatures[i].Title)
		add(&out.HomeFeatures[i].Description)
	}
	for i := range out.Amenities {
		add(&out.Amenities[i].Name)
	}

	var seasonJobs []job
	addSeason := func(dst *string) {
		if strings.TrimSpace(*dst) == "" || isSeasonProperNoun(*dst) {
			return
		}
		seasonJobs = append(seasonJobs, job{src: *dst, dst: dst})
	}
	for i := range out.SeasonalPrices {
		addSeason(&out.SeasonalPrices[i].SeasonName)
		addSeason(&out.SeasonalPrices[i].Dates)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.runBatch(ctx, v.ID, "native", nativeJobs, lang, native)
	}()
	go func() {
		defer wg.Done()
		// season labels are not necessarily native; let the provider detect
		p.runBatch(ctx, v.ID, "seasons", seasonJobs, lang, "")
	}()
	wg.Wait()
	return out
}

// runBatch translates jobs concurrently. Results are collected first and
// applied after every call settles, so no partial writes race with readers.
func (p *Projector) runBatch(ctx context.Context, villaID, batch string, jobs []job, lang, source string) {
	if len(jobs) == 0 {
		return
	}
	results := make([]string, len(jobs))
	var failed atomic.Int32
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			t, err := p.tr.Translate(ctx, src, lang, source)
			if err != nil || strings.TrimSpace(t) == "" {
				failed.Add(1)
				results[i] = src
				return
			}
			results[i] = t
		}(i, j.src)
	}
	wg.Wait()
	for i, j := range jobs {
		*j.dst = results[i]
	}
	if n := failed.Load(); n > 0 {
		log.Warn().
			Str("villa", villaID).
			Str("batch", batch).
			Str("lang", lang).
			Int32("failed", n).
			Int("total", len(jobs)).
			Msg("translation fell back to native text")
	}
}

func isSeasonProperNoun(s string) bool {
	low := strings.ToLower(s)
	for _, w := range untranslatedSeasonWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

// baseView copies v into a view holding native-language strings. Slices are
// copied so translated values never alias the source villa.
func baseView(v domain.Villa, lang string) domain.VillaView {
	native := v.Lang()
	out := domain.VillaView{
		ID:              v.ID,
		Slug:            v.Slug,
		ListingType:     v.ListingType,
		Language:        lang,
		Name:            v.Name.Resolve(lang, native),
		Description:     v.Description.Resolve(native, native),
		FullDescription: v.FullDescription.Resolve(native, native),
		PriceNote:       v.PriceNote.Resolve(native, native),
		Bedrooms:        v.Bedrooms,
		Bathrooms:       v.Bathrooms,
		Guests:          v.Guests,
		Surface:         v.Surface,
		PricePerNight:   v.PricePerNight,
		PricePerWeek:    v.PricePerWeek,
		SalePrice:       v.SalePrice,
		Location:        v.Location,
		Geopoint:        v.Geopoint,
		MainImage:       v.MainImage,
		Featured:        v.FeaturedOnHomepage,
		HomepageOrder:   v.HomepageOrder,
		Price:           DisplayPrice(v),
		Amenities:       append([]domain.Amenity{}, v.Amenities...),
		HomeFeatures:    append([]domain.HomeFeature{}, v.HomeFeatures...),
		Tags:            append([]string{}, v.Tags...),
		Gallery:         append([]string{}, v.Gallery...),
		SeasonalPrices:  make([]domain.SeasonView, 0, len(v.SeasonalPrices)),
	}
	for _, s := range v.SeasonalPrices {
		out.SeasonalPrices = append(out.SeasonalPrices, domain.SeasonView{
			SeasonID:   s.SeasonID,
			SeasonName: s.SeasonName,
			Dates:      s.Dates,
			Prices:     append([]domain.PriceTier{}, s.Prices...),
		})
	}
	return out
}
