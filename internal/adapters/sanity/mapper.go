package sanity

import (
	"math"
	"strconv"
	"strings"

	"villa_catalog/internal/domain"
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// intPtr: non-negative whole number from several paths, nil if absent.
func intPtr(m map[string]any, paths ...string) *int {
	f := getFloatFlexible(m, paths...)
	if f == nil || *f < 0 {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

func intOr0(m map[string]any, path string) int {
	if p := intPtr(m, path); p != nil {
		return *p
	}
	return 0
}

func boolPtr(m map[string]any, path string) *bool {
	if b, ok := lookupAny(m, path).(bool); ok {
		return &b
	}
	return nil
}

func objects(m map[string]any, path string) []map[string]any {
	raw, ok := lookupAny(m, path).([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func strs(m map[string]any, path string) []string {
	raw, ok := lookupAny(m, path).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

/********** localized fields **********/

// localized normalizes a string-or-object field. A bare string is the legacy
// single-language form and fills every supported language slot.
func localized(v any) domain.LocalizedText {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		out := make(domain.LocalizedText, len(domain.SupportedLangs))
		for _, l := range domain.SupportedLangs {
			out[l] = t
		}
		return out
	case map[string]any:
		out := domain.LocalizedText{}
		for k, raw := range t {
			if strings.HasPrefix(k, "_") {
				continue // _type, _key
			}
			if s, ok := raw.(string); ok && s != "" {
				out[k] = s
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}

// plain resolves a field that should be a single string but may have been
// authored as a per-language object.
func plain(v any, native string) string {
	return localized(v).Resolve(native, native)
}

/********** villa mapper **********/

func (c *Client) mapVilla(p map[string]any) domain.Villa {
	native := lookupStr(p, "language")
	if native == "" {
		native = domain.NativeLang
	}

	v := domain.Villa{
		ID:              lookupStr(p, "_id"),
		Slug:            lookupStr(p, "slug"),
		ListingType:     domain.ParseListingMode(lookupStr(p, "listingType")),
		NativeLang:      native,
		Name:            localized(lookupAny(p, "name")),
		Description:     localized(lookupAny(p, "description")),
		FullDescription: localized(lookupAny(p, "fullDescription")),
		PriceNote:       localized(lookupAny(p, "priceNote")),

		Bedrooms:  intOr0(p, "bedrooms"),
		Bathrooms: intOr0(p, "bathrooms"),
		Guests:    intOr0(p, "guests"),
		Surface:   intPtr(p, "surface"),

		PricePerNight: intPtr(p, "pricePerNight"),
		PricePerWeek:  intPtr(p, "pricePerWeek"),
		SalePrice:     intPtr(p, "salePrice"),

		Tags:                 strs(p, "tags"),
		FeaturedOnHomepage:   lookupAny(p, "featuredOnHomepage") == true,
		HomepageOrder:        intPtr(p, "homepageOrder"),
		HighlightedAmenities: strs(p, "highlightedAmenities"),
		BrochureIncludePrice: boolPtr(p, "includePriceInBrochure"),
	}

	if loc, ok := lookupAny(p, "location").(map[string]any); ok {
		v.Location = domain.Location{
			ID:    lookupStr(loc, "_id"),
			Name:  plain(lookupAny(loc, "name"), native),
			Order: intOr0(loc, "order"),
		}
	}

	lat := getFloatFlexible(p, "geopoint.lat")
	lng := getFloatFlexible(p, "geopoint.lng")
	if lat != nil && lng != nil {
		v.Geopoint = &domain.Geopoint{Lat: *lat, Lng: *lng}
	}

	for _, a := range objects(p, "amenities") {
		v.Amenities = append(v.Amenities, domain.Amenity{
			ID:   lookupStr(a, "_id"),
			Name: plain(lookupAny(a, "name"), native),
			Icon: lookupStr(a, "icon"),
		})
	}

	for _, f := range objects(p, "homeFeatures") {
		v.HomeFeatures = append(v.HomeFeatures, domain.HomeFeature{
			Title:       plain(lookupAny(f, "title"), native),
			Description: plain(lookupAny(f, "description"), native),
		})
	}

	for _, s := range objects(p, "seasonalPrices") {
		sp := domain.SeasonalPrice{
			SeasonID:   lookupStr(s, "season._id"),
			SeasonName: plain(lookupAny(s, "season.name"), native),
			Dates:      plain(lookupAny(s, "dates"), native),
		}
		for _, t := range objects(s, "prices") {
			sp.Prices = append(sp.Prices, domain.PriceTier{
				Bedrooms: intOr0(t, "bedrooms"),
				Price:    intOr0(t, "price"),
			})
		}
		v.SeasonalPrices = append(v.SeasonalPrices, sp)
	}

	v.MainImage = c.imageOrURL(lookupStr(p, "mainImage"), lookupStr(p, "mainImageUrl"))
	for _, g := range objects(p, "gallery") {
		if u := c.imageOrURL(lookupStr(g, "ref"), lookupStr(g, "url")); u != "" {
			v.Gallery = append(v.Gallery, u)
		}
	}
	return v
}

// imageOrURL prefers an uploaded asset and falls back to a stored URL.
func (c *Client) imageOrURL(ref, direct string) string {
	if u := ImageURL(ref, c.cfg.ProjectID, c.cfg.Dataset); u != "" {
		return u
	}
	return strings.TrimSpace(direct)
}
