package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"villa_catalog/internal/domain"
)

// WarmupService pre-translates villas so visitors hit the translation cache.
type WarmupService struct {
	projector *Projector
}

func NewWarmupService(p *Projector) *WarmupService {
	return &WarmupService{projector: p}
}

// WarmVilla projects v into every non-native language in langs. Projection
// failures already fall back per field, so this only reports timing.
func (s *WarmupService) WarmVilla(ctx context.Context, v domain.Villa, langs []string) {
	for _, lang := range langs {
		if lang == v.Lang() {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		s.projector.TranslateVilla(ctx, v, lang)
		log.Debug().
			Str("villa", v.ID).
			Str("lang", lang).
			Dur("duration", time.Since(start)).
			Msg("villa warmed")
	}
}
