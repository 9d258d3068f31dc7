package domain

import (
	"sort"
	"strings"
)

// NativeLang is the language villa content is authored in.
const NativeLang = "fr"

// SupportedLangs lists the languages the site is served in, native first.
var SupportedLangs = []string{"fr", "en"}

type ListingMode string

const (
	ModeRent ListingMode = "rent"
	ModeSale ListingMode = "sale"
)

// ParseListingMode returns ModeRent for anything that is not "sale".
func ParseListingMode(s string) ListingMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeSale)) {
		return ModeSale
	}
	return ModeRent
}

// LocalizedText maps a language code to text in that language.
type LocalizedText map[string]string

// Resolve returns the text for lang, falling back to native, then to the
// first non-empty entry in key order.
func (t LocalizedText) Resolve(lang, native string) string {
	if s := t[lang]; s != "" {
		return s
	}
	if s := t[native]; s != "" {
		return s
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if t[k] != "" {
			return t[k]
		}
	}
	return ""
}

type Villa struct {
	ID          string
	Slug        string
	ListingType ListingMode
	NativeLang  string

	Name            LocalizedText
	Description     LocalizedText
	FullDescription LocalizedText
	PriceNote       LocalizedText

	Bedrooms  int
	Bathrooms int
	Guests    int
	Surface   *int

	PricePerNight  *int
	PricePerWeek   *int
	SalePrice      *int
	SeasonalPrices []SeasonalPrice

	Amenities    []Amenity
	Location     Location
	Geopoint     *Geopoint
	HomeFeatures []HomeFeature
	Tags         []string

	MainImage string
	Gallery   []string

	FeaturedOnHomepage bool
	HomepageOrder      *int

	// HighlightedAmenities restricts the brochure amenity list to these icons.
	HighlightedAmenities []string
	// BrochureIncludePrice nil means true.
	BrochureIncludePrice *bool
}

// Lang returns the villa's native language, defaulting to NativeLang.
func (v Villa) Lang() string {
	if v.NativeLang != "" {
		return v.NativeLang
	}
	return NativeLang
}

type SeasonalPrice struct {
	SeasonID   string
	SeasonName string
	Dates      string
	Prices     []PriceTier
}

type PriceTier struct {
	Bedrooms int `json:"bedrooms"`
	Price    int `json:"price"`
}

type Amenity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Location struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type Geopoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type HomeFeature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// VillaView is a villa with every text field resolved to one language.
type VillaView struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	ListingType     ListingMode     `json:"listingType"`
	Language        string          `json:"language"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	FullDescription string          `json:"fullDescription"`
	PriceNote       string          `json:"priceNote,omitempty"`
	Bedrooms        int             `json:"bedrooms"`
	Bathrooms       int             `json:"bathrooms"`
	Guests          int             `json:"guests"`
	Surface         *int            `json:"surface,omitempty"`
	PricePerNight   *int            `json:"pricePerNight,omitempty"`
	PricePerWeek    *int            `json:"pricePerWeek,omitempty"`
	SalePrice       *int            `json:"salePrice,omitempty"`
	SeasonalPrices  []SeasonView    `json:"seasonalPrices"`
	Amenities       []Amenity       `json:"amenities"`
	Location        Location        `json:"location"`
	Geopoint        *Geopoint       `json:"geopoint,omitempty"`
	HomeFeatures    []HomeFeature   `json:"homeFeatures"`
	Tags            []string        `json:"tags"`
	MainImage       string          `json:"mainImage,omitempty"`
	Gallery         []string        `json:"gallery"`
	Featured        bool            `json:"featuredOnHomepage"`
	HomepageOrder   *int            `json:"homepageOrder,omitempty"`
	Price           *DisplayedPrice `json:"price,omitempty"`
}

type SeasonView struct {
	SeasonID   string      `json:"seasonId,omitempty"`
	SeasonName string      `json:"seasonName"`
	Dates      string      `json:"dates"`
	Prices     []PriceTier `json:"prices"`
}

// DisplayedPrice is the single authoritative price shown for a listing.
// A nil *DisplayedPrice means "price on request".
type DisplayedPrice struct {
	Amount int    `json:"amount"`
	Period string `json:"period"` // week|night|sale
}
