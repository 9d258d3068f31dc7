package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"villa_catalog/internal/adapters/gtranslate"
	server "villa_catalog/internal/adapters/http_server"
	"villa_catalog/internal/adapters/observability"
	"villa_catalog/internal/adapters/pdf"
	redisad "villa_catalog/internal/adapters/redis"
	"villa_catalog/internal/adapters/sanity"
	"villa_catalog/internal/app"
	"villa_catalog/internal/domain"
	"villa_catalog/internal/shared"
	mysqlrepo "villa_catalog/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	content, err := sanity.New(sanity.Config{
		ProjectID:  cfg.SanityProjectID,
		Dataset:    cfg.SanityDataset,
		APIVersion: cfg.SanityAPIVersion,
		Token:      cfg.SanityReadToken,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Sanity client")
	}

	store, closeStore := openTranslationStore(cfg, content)
	defer closeStore()

	provider := gtranslate.New(gtranslate.Config{
		APIKey:  cfg.TranslateKey,
		BaseURL: cfg.TranslateBaseURL,
		Timeout: cfg.TranslateTimeout,
	})
	translator := app.NewTranslationService(provider, store)
	projector := app.NewProjector(translator)

	// http
	srv := server.New(cfg.CORSOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:    app.NewCatalogService(content, projector),
		Projector:  projector,
		Translator: translator,
		Inquiries:  app.NewInquiryService(content),
		Brochures:  pdf.NewRenderer(pdf.NewHTTPImageFetcher(10 * time.Second)),
		Agency: app.AgencyContact{
			Name:    cfg.AgencyName,
			Email:   cfg.AgencyEmail,
			Phone:   cfg.AgencyPhone,
			Website: cfg.AgencyWebsite,
		},
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.TranslationStore).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// let in-flight cache writes land before the store goes away
	translator.Flush()
	log.Info().Msg("bye")
}

// openTranslationStore picks the translation cache backend. A nil store
// disables caching; every translation then goes to the provider.
func openTranslationStore(cfg shared.Config, content *sanity.Client) (domain.TranslationStore, func()) {
	noop := func() {}
	switch cfg.TranslationStore {
	case "sanity":
		return sanity.NewTranslationStore(content, cfg.SanityWriteToken), noop
	case "redis":
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; cache reads will miss until it recovers")
		}
		return cache, func() { _ = cache.Close() }
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }
	case "none", "":
		log.Warn().Msg("translation cache disabled")
		return nil, noop
	default:
		log.Fatal().Str("store", cfg.TranslationStore).Msg("unknown TRANSLATION_STORE")
		return nil, noop
	}
}
