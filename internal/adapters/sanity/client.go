// internal/adapters/sanity/client.go
package sanity

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"villa_catalog/internal/adapters/observability"
	"villa_catalog/internal/domain"
)

type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // e.g. 2024-01-01
	Token      string // read token; empty means public CDN reads
	BaseURL    string // overrides the computed host, used by tests
	RPS        int
}

type Client struct {
	cfg       Config
	queryBase string // CDN when unauthenticated
	apiBase   string // always the live API
	hc        *http.Client
	rl        *rate.Limiter
}

func New(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("sanity project id is required")
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-01-01"
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 20
	}
	c := &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: 15 * time.Second},
		rl:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
	}
	switch {
	case cfg.BaseURL != "":
		c.queryBase = strings.TrimRight(cfg.BaseURL, "/")
		c.apiBase = c.queryBase
	default:
		c.apiBase = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
		c.queryBase = c.apiBase
		if cfg.Token == "" {
			c.queryBase = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
		}
	}
	return c, nil
}

// ---- Public API (never returns errors: failures degrade to empty/absent) ----

func (c *Client) AllVillas(ctx context.Context) []domain.Villa {
	var raw []map[string]any
	if err := c.Query(ctx, allVillasQuery, nil, &raw); err != nil {
		log.Error().Err(err).Str("context", "AllVillas").Msg("content query failed")
		return []domain.Villa{}
	}
	out := make([]domain.Villa, 0, len(raw))
	for _, doc := range raw {
		out = append(out, c.mapVilla(doc))
	}
	return out
}

func (c *Client) VillaByID(ctx context.Context, id string) (domain.Villa, bool) {
	return c.one(ctx, "VillaByID", villaByIDQuery, map[string]any{"id": id})
}

func (c *Client) VillaBySlug(ctx context.Context, slug string) (domain.Villa, bool) {
	return c.one(ctx, "VillaBySlug", villaBySlugQuery, map[string]any{"slug": slug})
}

func (c *Client) one(ctx context.Context, op, query string, params map[string]any) (domain.Villa, bool) {
	var raw map[string]any
	if err := c.Query(ctx, query, params, &raw); err != nil {
		log.Error().Err(err).Str("context", op).Interface("params", params).Msg("content query failed")
		return domain.Villa{}, false
	}
	if raw == nil {
		return domain.Villa{}, false
	}
	return c.mapVilla(raw), true
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("sanity: not found")
	ErrUnauthorized = errors.New("sanity: unauthorized")
	ErrForbidden    = errors.New("sanity: forbidden")
)

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

// Query runs a GROQ query with named parameters and decodes `result` into out.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) error {
	return c.query(ctx, c.queryBase, c.cfg.Token, query, params, out)
}

func (c *Client) query(ctx context.Context, base, token, query string, params map[string]any, out any) error {
	v := url.Values{}
	v.Set("query", query)
	for k, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", k, err)
		}
		v.Set("$"+k, string(b))
	}
	u := fmt.Sprintf("%s/v%s/data/query/%s?%s", base, c.cfg.APIVersion, c.cfg.Dataset, v.Encode())

	var resp queryResponse
	if err := c.do(ctx, "query", http.MethodGet, u, token, nil, &resp); err != nil {
		return err
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}

// mutate posts a mutation batch to the live API with token.
func (c *Client) mutate(ctx context.Context, token string, mutations []map[string]any) error {
	if token == "" {
		return ErrUnauthorized
	}
	body, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/v%s/data/mutate/%s", c.apiBase, c.cfg.APIVersion, c.cfg.Dataset)
	return c.do(ctx, "mutate", http.MethodPost, u, token, body, nil)
}

// do performs a request with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) do(ctx context.Context, endpoint, method, url, token string, body []byte, out any) error {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// mutations resend the same body on retry
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "villa-catalog/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("sanity", endpoint, 0, time.Since(start))
			// network error or context canceled
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			// out of retries
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("sanity", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			defer resp.Body.Close()
			// mutations may not care about the transaction result
			if out == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Retry-After wins over our own backoff
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("sanity: remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// malformed GROQ comes back as 400 with an error document
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("sanity: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 200ms, 400ms, 800ms... with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
