package app

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"villa_catalog/internal/domain"
)

const (
	brochureMaxAmenities   = 8
	brochureMaxDescription = 800
	brochureMaxGallery     = 4
	brochureEllipsis       = "…"

	assetCDNHost = "cdn.sanity.io"
)

type AgencyContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// BrochureModel is everything the PDF layout needs, already size-limited.
type BrochureModel struct {
	Language    string             `json:"language"`
	Labels      BrochureLabels     `json:"labels"`
	Filename    string             `json:"filename"`
	Name        string             `json:"name"`
	Location    string             `json:"location"`
	ListingType domain.ListingMode `json:"listingType"`
	Bedrooms    int                `json:"bedrooms"`
	Bathrooms   int                `json:"bathrooms"`
	Guests      int                `json:"guests"`
	Surface     *int               `json:"surface,omitempty"`
	Description string             `json:"description"`
	Amenities   []domain.Amenity   `json:"amenities"`
	MainImage   string             `json:"mainImage,omitempty"`
	Gallery     []string           `json:"gallery"`
	Pricing     *BrochurePricing   `json:"pricing,omitempty"`
	Agency      AgencyContact      `json:"agency"`
}

// BrochurePricing is nil on the model whenever no meaningful price exists.
type BrochurePricing struct {
	Seasons   []domain.SeasonalPrice `json:"seasons,omitempty"`
	SalePrice int                    `json:"salePrice,omitempty"`
	Note      string                 `json:"note,omitempty"`
}

type BrochureLabels struct {
	Bedrooms    string `json:"bedrooms"`
	Bathrooms   string `json:"bathrooms"`
	Guests      string `json:"guests"`
	Surface     string `json:"surface"`
	Description string `json:"description"`
	Amenities   string `json:"amenities"`
	Rates       string `json:"rates"`
	SalePrice   string `json:"salePrice"`
	PerWeek     string `json:"perWeek"`
	Contact     string `json:"contact"`
	ForRent     string `json:"forRent"`
	ForSale     string `json:"forSale"`
}

var brochureLabels = map[string]BrochureLabels{
	"fr": {
		Bedrooms: "Chambres", Bathrooms: "Salles de bain", Guests: "Voyageurs", Surface: "Surface",
		Description: "Description", Amenities: "Équipements", Rates: "Tarifs", SalePrice: "Prix de vente",
		PerWeek: "par semaine", Contact: "Contact", ForRent: "Location", ForSale: "Vente",
	},
	"en": {
		Bedrooms: "Bedrooms", Bathrooms: "Bathrooms", Guests: "Guests", Surface: "Surface",
		Description: "Description", Amenities: "Amenities", Rates: "Rates", SalePrice: "Sale price",
		PerWeek: "per week", Contact: "Contact", ForRent: "For rent", ForSale: "For sale",
	},
}

func labelsFor(lang string) BrochureLabels {
	if l, ok := brochureLabels[lang]; ok {
		return l
	}
	return brochureLabels[domain.NativeLang]
}

func BuildBrochureModel(v domain.Villa, lang string, agency AgencyContact) BrochureModel {
	native := v.Lang()
	if lang == "" {
		lang = native
	}
	name := v.Name.Resolve(lang, native)

	m := BrochureModel{
		Language:    lang,
		Labels:      labelsFor(lang),
		Filename:    BrochureFilename(name),
		Name:        name,
		Location:    v.Location.Name,
		ListingType: v.ListingType,
		Bedrooms:    v.Bedrooms,
		Bathrooms:   v.Bathrooms,
		Guests:      v.Guests,
		Surface:     v.Surface,
		Description: TruncateText(v.FullDescription.Resolve(lang, native), brochureMaxDescription),
		Amenities:   brochureAmenities(v),
		Agency:      agency,
	}
	if m.Description == "" {
		m.Description = TruncateText(v.Description.Resolve(lang, native), brochureMaxDescription)
	}

	main := v.MainImage
	gallery := v.Gallery
	if main == "" && len(gallery) > 0 {
		main, gallery = gallery[0], gallery[1:]
	}
	if main != "" {
		m.MainImage = OptimizeImageURL(main, 1600)
	}
	m.Gallery = make([]string, 0, brochureMaxGallery)
	for _, g := range gallery {
		if len(m.Gallery) == brochureMaxGallery {
			break
		}
		if g == "" || g == main {
			continue
		}
		m.Gallery = append(m.Gallery, OptimizeImageURL(g, 800))
	}

	m.Pricing = brochurePricing(v, lang)
	return m
}

func brochureAmenities(v domain.Villa) []domain.Amenity {
	out := make([]domain.Amenity, 0, brochureMaxAmenities)
	if len(v.HighlightedAmenities) > 0 {
		allow := make(map[string]struct{}, len(v.HighlightedAmenities))
		for _, k := range v.HighlightedAmenities {
			allow[k] = struct{}{}
		}
		for _, a := range v.Amenities {
			if len(out) == brochureMaxAmenities {
				break
			}
			if _, ok := allow[a.Icon]; ok {
				out = append(out, a)
			}
		}
		return out
	}
	for _, a := range v.Amenities {
		if len(out) == brochureMaxAmenities {
			break
		}
		out = append(out, a)
	}
	return out
}

func brochurePricing(v domain.Villa, lang string) *BrochurePricing {
	if v.BrochureIncludePrice != nil && !*v.BrochureIncludePrice {
		return nil
	}
	note := v.PriceNote.Resolve(lang, v.Lang())
	switch v.ListingType {
	case domain.ModeSale:
		if v.SalePrice == nil || *v.SalePrice <= 0 {
			return nil
		}
		return &BrochurePricing{SalePrice: *v.SalePrice, Note: note}
	default:
		if len(v.SeasonalPrices) == 0 {
			return nil
		}
		return &BrochurePricing{Seasons: v.SeasonalPrices, Note: note}
	}
}

// TruncateText shortens s to at most max runes, dropping a trailing partial
// word and appending an ellipsis. Text within the limit is returned as is.
func TruncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	cut := string(r[:max])
	if !unicode.IsSpace(r[max]) {
		if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + brochureEllipsis
}

// OptimizeImageURL adds resize and compression parameters to asset CDN
// images. Other hosts pass through untouched.
func OptimizeImageURL(raw string, width int) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Host, assetCDNHost) {
		return raw
	}
	q := u.Query()
	q.Set("w", strconv.Itoa(width))
	q.Set("q", "75")
	q.Set("fm", "jpg")
	q.Set("fit", "max")
	u.RawQuery = q.Encode()
	return u.String()
}
