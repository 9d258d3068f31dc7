package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"villa_catalog/internal/adapters/gtranslate"
	"villa_catalog/internal/adapters/observability"
	redisad "villa_catalog/internal/adapters/redis"
	"villa_catalog/internal/adapters/sanity"
	"villa_catalog/internal/app"
	"villa_catalog/internal/domain"
	"villa_catalog/internal/shared"
	mysqlrepo "villa_catalog/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("store", cfg.TranslationStore).
		Strs("langs", cfg.WarmLangs).
		Int("workers", cfg.WarmWorkers).
		Msg("warmer starting")

	content, err := sanity.New(sanity.Config{
		ProjectID:  cfg.SanityProjectID,
		Dataset:    cfg.SanityDataset,
		APIVersion: cfg.SanityAPIVersion,
		Token:      cfg.SanityReadToken,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Sanity client")
	}

	var store domain.TranslationStore
	switch cfg.TranslationStore {
	case "sanity":
		store = sanity.NewTranslationStore(content, cfg.SanityWriteToken)
	case "redis":
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cache.Close()
		store = cache
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		defer db.Close()
		store = mysqlrepo.New(db)
	default:
		log.Fatal().Str("store", cfg.TranslationStore).Msg("warming needs a translation store")
	}

	translator := app.NewTranslationService(gtranslate.New(gtranslate.Config{
		APIKey:  cfg.TranslateKey,
		BaseURL: cfg.TranslateBaseURL,
		Timeout: cfg.TranslateTimeout,
	}), store)
	warm := app.NewWarmupService(app.NewProjector(translator))

	villas := content.AllVillas(ctx)
	log.Info().Int("villas", len(villas)).Msg("catalog loaded")

	start := time.Now()
	sem := semaphore.NewWeighted(int64(max(cfg.WarmWorkers, 1)))
	var wg sync.WaitGroup

	for _, v := range villas {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("warming interrupted")
			break
		}

		wg.Add(1)
		go func(v domain.Villa) {
			defer wg.Done()
			defer sem.Release(1)

			warm.WarmVilla(ctx, v, cfg.WarmLangs)
			log.Info().Str("id", v.ID).Str("slug", v.Slug).Msg("warm ok")
		}(v)
	}

	wg.Wait()
	translator.Flush()
	log.Info().Dur("took", time.Since(start)).Msg("warming completed")
}
