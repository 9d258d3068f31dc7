package app

import (
	"sort"

	"villa_catalog/internal/domain"
)

// Price ceilings at or above these values mean "no ceiling". They double as
// the slider maximum in the catalog UI.
const (
	RentPriceUnlimited = 150000
	SalePriceUnlimited = 25000000
)

// AllLocations is the location facet value that disables location filtering.
const AllLocations = "all"

type FilterState struct {
	Location  string   `json:"location"`
	Guests    int      `json:"guests"` // bedrooms floor in sale mode
	Price     int      `json:"price"`
	Amenities []string `json:"amenities"`
}

// DefaultFilterState is the state a catalog starts in, and returns to on a mode change.
// Sale listings start without a bedrooms floor.
func DefaultFilterState(mode domain.ListingMode) FilterState {
	floor := 1
	if mode == domain.ModeSale {
		floor = 0
	}
	return FilterState{
		Location:  AllLocations,
		Guests:    floor,
		Price:     PriceUnlimited(mode),
		Amenities: []string{},
	}
}

func PriceUnlimited(mode domain.ListingMode) int {
	if mode == domain.ModeSale {
		return SalePriceUnlimited
	}
	return RentPriceUnlimited
}

// EffectiveWeeklyPrice is pricePerWeek when positive, else seven nights.
// Villas priced on request come out as 0.
func EffectiveWeeklyPrice(v domain.Villa) int {
	if v.PricePerWeek != nil && *v.PricePerWeek > 0 {
		return *v.PricePerWeek
	}
	if v.PricePerNight != nil && *v.PricePerNight > 0 {
		return *v.PricePerNight * 7
	}
	return 0
}

// FilterVillas keeps villas of the given mode that satisfy every clause of f.
// Input order is preserved.
func FilterVillas(all []domain.Villa, mode domain.ListingMode, f FilterState) []domain.Villa {
	out := make([]domain.Villa, 0, len(all))
	for _, v := range all {
		if matches(v, mode, f) {
			out = append(out, v)
		}
	}
	return out
}

func matches(v domain.Villa, mode domain.ListingMode, f FilterState) bool {
	if v.ListingType != mode {
		return false
	}
	if f.Location != "" && f.Location != AllLocations && v.Location.Name != f.Location {
		return false
	}
	if capacity(v, mode) < f.Guests {
		return false
	}
	if !withinPrice(v, mode, f.Price) {
		return false
	}
	return hasAllAmenities(v, f.Amenities)
}

// capacity is the field the guests floor applies to: bedrooms for sales,
// sleeping capacity for rentals.
func capacity(v domain.Villa, mode domain.ListingMode) int {
	if mode == domain.ModeSale {
		return v.Bedrooms
	}
	return v.Guests
}

func withinPrice(v domain.Villa, mode domain.ListingMode, ceiling int) bool {
	if ceiling >= PriceUnlimited(mode) {
		return true
	}
	if mode == domain.ModeSale {
		price := 0
		if v.SalePrice != nil {
			price = *v.SalePrice
		}
		return price <= ceiling
	}
	return EffectiveWeeklyPrice(v) <= ceiling
}

func hasAllAmenities(v domain.Villa, required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(v.Amenities))
	for _, a := range v.Amenities {
		have[a.Name] = struct{}{}
	}
	for _, name := range required {
		if _, ok := have[name]; !ok {
			return false
		}
	}
	return true
}

// DeriveLocations returns "all" followed by the sorted distinct location
// names of villas in mode.
func DeriveLocations(all []domain.Villa, mode domain.ListingMode) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, v := range all {
		if v.ListingType != mode || v.Location.Name == "" {
			continue
		}
		if _, ok := seen[v.Location.Name]; ok {
			continue
		}
		seen[v.Location.Name] = struct{}{}
		names = append(names, v.Location.Name)
	}
	sort.Strings(names)
	return append([]string{AllLocations}, names...)
}

// DeriveTopAmenities returns up to limit amenity names of villas in mode,
// most frequent first. Ties keep first-encounter order.
func DeriveTopAmenities(all []domain.Villa, mode domain.ListingMode, limit int) []string {
	counts := map[string]int{}
	var order []string
	for _, v := range all {
		if v.ListingType != mode {
			continue
		}
		for _, a := range v.Amenities {
			if a.Name == "" {
				continue
			}
			if _, ok := counts[a.Name]; !ok {
				order = append(order, a.Name)
			}
			counts[a.Name]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if limit >= 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

// DisplayPrice picks the one price shown for a listing: weekly, then nightly
// for rentals, sale price for sales. nil means price on request.
func DisplayPrice(v domain.Villa) *domain.DisplayedPrice {
	if v.ListingType == domain.ModeSale {
		if v.SalePrice != nil && *v.SalePrice > 0 {
			return &domain.DisplayedPrice{Amount: *v.SalePrice, Period: "sale"}
		}
		return nil
	}
	if v.PricePerWeek != nil && *v.PricePerWeek > 0 {
		return &domain.DisplayedPrice{Amount: *v.PricePerWeek, Period: "week"}
	}
	if v.PricePerNight != nil && *v.PricePerNight > 0 {
		return &domain.DisplayedPrice{Amount: *v.PricePerNight, Period: "night"}
	}
	return nil
}
