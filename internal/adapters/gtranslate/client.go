// Package gtranslate calls the Google Cloud Translation v2 REST API.
package gtranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"villa_catalog/internal/adapters/observability"
	"villa_catalog/internal/domain"
)

// maxErrorRunes caps provider error text carried in StatusError.
const maxErrorRunes = 300

const DefaultBaseURL = "https://translation.googleapis.com/language/translate/v2"

var (
	ErrNoAPIKey    = errors.New("gtranslate: API key is not configured")
	ErrEmptyResult = errors.New("gtranslate: empty translation")
)

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gtranslate: status %d: %s", e.Status, e.Message)
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

type Client struct {
	base string
	key  string
	hc   *http.Client
	rl   *rate.Limiter
	cb   *gobreaker.CircuitBreaker
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	return &Client{
		base: cfg.BaseURL,
		key:  cfg.APIKey,
		hc:   &http.Client{Timeout: cfg.Timeout},
		rl:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "google-translate",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// a bad request is our fault, not the provider's
			IsSuccessful: func(err error) bool {
				var se *StatusError
				if errors.As(err, &se) {
					return se.Status < 500 && se.Status != http.StatusTooManyRequests && se.Status != http.StatusForbidden
				}
				return err == nil
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			},
		}),
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Target string `json:"target"`
	Source string `json:"source,omitempty"`
	Format string `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage"`
		} `json:"translations"`
	} `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Translate(ctx context.Context, text, targetLang, sourceLang string) (domain.ProviderResult, error) {
	if c.key == "" {
		return domain.ProviderResult{}, ErrNoAPIKey
	}
	if err := c.rl.Wait(ctx); err != nil {
		return domain.ProviderResult{}, err
	}
	res, err := c.cb.Execute(func() (any, error) {
		return c.translate(ctx, text, targetLang, sourceLang)
	})
	if err != nil {
		return domain.ProviderResult{}, err
	}
	return res.(domain.ProviderResult), nil
}

func (c *Client) translate(ctx context.Context, text, targetLang, sourceLang string) (domain.ProviderResult, error) {
	body, err := json.Marshal(translateRequest{Q: text, Target: targetLang, Source: sourceLang, Format: "text"})
	if err != nil {
		return domain.ProviderResult{}, err
	}
	u := c.base + "?key=" + url.QueryEscape(c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return domain.ProviderResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("gtranslate", "translate", 0, time.Since(start))
		return domain.ProviderResult{}, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("gtranslate", "translate", resp.StatusCode, time.Since(start))

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.ProviderResult{}, err
	}
	var out translateResponse
	_ = json.Unmarshal(b, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(b))
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		if r := []rune(msg); len(r) > maxErrorRunes {
			msg = string(r[:maxErrorRunes])
		}
		return domain.ProviderResult{}, &StatusError{Status: resp.StatusCode, Message: msg}
	}
	if len(out.Data.Translations) == 0 {
		return domain.ProviderResult{}, ErrEmptyResult
	}
	t := out.Data.Translations[0]
	return domain.ProviderResult{
		Text:               html.UnescapeString(t.TranslatedText),
		DetectedSourceLang: t.DetectedSourceLanguage,
	}, nil
}
