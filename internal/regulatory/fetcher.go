package regulatory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/qeme/sentinel-lite/model"
	"golang.org/x/text/encoding/charmap"
)

// Fetcher retrieves the raw text content of a source.
type Fetcher interface {
	Fetch(ctx context.Context, source model.Source) (string, error)
}

// HTTPFetcher fetches sources over HTTP with a bounded timeout.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewHTTPFetcher creates a fetcher from the timeout, user agent and body cap in cfg.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return &HTTPFetcher{
		client:       &http.Client{Timeout: timeout},
		userAgent:    ua,
		maxBodyBytes: limit,
	}
}

// Fetch issues a GET for source.URL and decodes the body as text.
// Every failure is returned as a *FetchError scoped to the source.
func (f *HTTPFetcher) Fetch(ctx context.Context, source model.Source) (string, error) {
	fail := func(status int, err error) error {
		return &FetchError{Source: source.Name, URL: source.URL, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return "", fail(0, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fail(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return "", fail(0, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return "", fail(0, fmt.Errorf("response exceeds %d bytes", f.maxBodyBytes))
	}

	return DecodeText(body), nil
}

// DecodeText decodes body as UTF-8, falling back to ISO-8859-1 so decoding never fails.
func DecodeText(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return string(decoded)
}
