package app

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"villa_catalog/internal/domain"
)

const (
	defaultTopAmenities = 8
	projectionWorkers   = 8
)

type VillasState struct {
	Villas  []domain.Villa
	Loading bool
	Err     error
}

type VillaState struct {
	Villa   *domain.Villa
	Loading bool
	Err     error
}

// CatalogService issues one content store read per call. No caching or
// request deduplication happens here.
type CatalogService struct {
	store     domain.ContentStore
	projector *Projector
}

func NewCatalogService(store domain.ContentStore, p *Projector) *CatalogService {
	return &CatalogService{store: store, projector: p}
}

func (s *CatalogService) AllVillas(ctx context.Context) VillasState {
	villas := s.store.AllVillas(ctx)
	if villas == nil {
		villas = []domain.Villa{}
	}
	return VillasState{Villas: villas}
}

// Villa looks a villa up by id. An empty id is not an error and issues no query.
func (s *CatalogService) Villa(ctx context.Context, id string) VillaState {
	if id == "" {
		return VillaState{}
	}
	v, ok := s.store.VillaByID(ctx, id)
	if !ok {
		return VillaState{Err: domain.ErrNotFound}
	}
	return VillaState{Villa: &v}
}

func (s *CatalogService) VillaBySlug(ctx context.Context, slug string) VillaState {
	if slug == "" {
		return VillaState{}
	}
	v, ok := s.store.VillaBySlug(ctx, slug)
	if !ok {
		return VillaState{Err: domain.ErrNotFound}
	}
	return VillaState{Villa: &v}
}

// Featured returns homepage villas ordered by homepageOrder; unordered ones go last.
func Featured(villas []domain.Villa) []domain.Villa {
	var out []domain.Villa
	for _, v := range villas {
		if v.FeaturedOnHomepage {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].HomepageOrder, out[j].HomepageOrder
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
	return out
}

type Listing struct {
	Mode      domain.ListingMode `json:"mode"`
	Filters   FilterState        `json:"filters"`
	Locations []string           `json:"locations"`
	Amenities []string           `json:"amenities"`
	Villas    []domain.VillaView `json:"villas"`
	Total     int                `json:"total"`
}

// Browse filters the catalog, derives facets, and projects the result into lang.
func (s *CatalogService) Browse(ctx context.Context, mode domain.ListingMode, f FilterState, lang string) Listing {
	all := s.AllVillas(ctx).Villas
	visible := FilterVillas(all, mode, f)
	return Listing{
		Mode:      mode,
		Filters:   f,
		Locations: DeriveLocations(all, mode),
		Amenities: DeriveTopAmenities(all, mode, defaultTopAmenities),
		Villas:    s.ProjectAll(ctx, visible, lang),
		Total:     len(visible),
	}
}

// ProjectAll translates villas with bounded parallelism, preserving order.
func (s *CatalogService) ProjectAll(ctx context.Context, villas []domain.Villa, lang string) []domain.VillaView {
	out := make([]domain.VillaView, len(villas))
	var g errgroup.Group
	g.SetLimit(projectionWorkers)
	for i := range villas {
		i := i
		g.Go(func() error {
			out[i] = s.projector.TranslateVilla(ctx, villas[i], lang)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
