package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	CORSOrigins []string

	SanityProjectID  string
	SanityDataset    string
	SanityAPIVersion string
	SanityReadToken  string
	SanityWriteToken string

	TranslateKey     string
	TranslateBaseURL string
	TranslateTimeout time.Duration

	// TranslationStore selects the cache backend: sanity|redis|mysql|none.
	TranslationStore string
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	MySQLDSN         string

	WarmLangs   []string
	WarmWorkers int

	AgencyName    string
	AgencyEmail   string
	AgencyPhone   string
	AgencyWebsite string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be loaded")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		CORSOrigins: list(env("CORS_ORIGINS", "")),

		SanityProjectID:  env("SANITY_PROJECT_ID", ""),
		SanityDataset:    env("SANITY_DATASET", "production"),
		SanityAPIVersion: env("SANITY_API_VERSION", "2024-01-01"),
		SanityReadToken:  env("SANITY_READ_TOKEN", ""),
		SanityWriteToken: env("SANITY_WRITE_TOKEN", ""),

		TranslateKey:     env("GOOGLE_TRANSLATE_API_KEY", ""),
		TranslateBaseURL: env("GOOGLE_TRANSLATE_BASE_URL", ""),
		TranslateTimeout: time.Duration(atoi("TRANSLATE_TIMEOUT_SECONDS", 10)) * time.Second,

		TranslationStore: strings.ToLower(env("TRANSLATION_STORE", "sanity")),
		RedisAddr:        env("REDIS_ADDR", "localhost:6379"),
		RedisPass:        env("REDIS_PASSWORD", ""),
		RedisDB:          atoi("REDIS_DB", 0),
		MySQLDSN:         env("MYSQL_DSN", "root:root@tcp(localhost:3306)/villas?parseTime=true&charset=utf8mb4&loc=UTC"),

		WarmLangs:   list(env("WARM_LANGS", "en")),
		WarmWorkers: atoi("WARM_WORKERS", 4),

		AgencyName:    env("AGENCY_NAME", "Villas St Barth"),
		AgencyEmail:   env("AGENCY_EMAIL", "contact@example.com"),
		AgencyPhone:   env("AGENCY_PHONE", ""),
		AgencyWebsite: env("AGENCY_WEBSITE", ""),
	}
	if c.SanityProjectID == "" {
		log.Warn().Msg("SANITY_PROJECT_ID is empty")
	}
	if c.TranslateKey == "" {
		log.Warn().Msg("GOOGLE_TRANSLATE_API_KEY is empty; translations will fall back to native text")
	}
	if c.TranslationStore == "sanity" && c.SanityWriteToken == "" {
		log.Warn().Msg("SANITY_WRITE_TOKEN is empty; translation cache write-back will fail")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
