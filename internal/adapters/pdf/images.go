package pdf

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"villa_catalog/internal/adapters/observability"
)

const maxImageBytes = 8 << 20

// ImageFetcher downloads an image and reports its fpdf type (JPG, PNG, GIF).
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

type HTTPImageFetcher struct {
	hc *http.Client
}

func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPImageFetcher{hc: &http.Client{Timeout: timeout}}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	start := time.Now()
	resp, err := f.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("images", "fetch", 0, time.Since(start))
		return nil, "", err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("images", "fetch", resp.StatusCode, time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image status %d", resp.StatusCode)
	}
	kind := imageKind(resp.Header.Get("Content-Type"), url)
	if kind == "" {
		return nil, "", fmt.Errorf("unsupported image type %q", resp.Header.Get("Content-Type"))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}
	return data, kind, nil
}

func imageKind(contentType, url string) string {
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/png":
		return "PNG"
	case "image/gif":
		return "GIF"
	}
	path := strings.ToLower(url)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return "JPG"
	case strings.HasSuffix(path, ".png"):
		return "PNG"
	case strings.HasSuffix(path, ".gif"):
		return "GIF"
	}
	return ""
}
