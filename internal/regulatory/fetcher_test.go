package regulatory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/qeme/sentinel-lite/model"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(DefaultConfig())
	body, err := f.Fetch(context.Background(), model.Source{Name: "alpha", URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, "hello", body)
	require.Equal(t, DefaultUserAgent, gotUA)
}

func TestHTTPFetcherLatin1Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// "café" in ISO-8859-1
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	body, err := NewHTTPFetcher(DefaultConfig()).Fetch(context.Background(), model.Source{Name: "alpha", URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, "café", body)
}

func TestHTTPFetcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(DefaultConfig()).Fetch(context.Background(), model.Source{Name: "alpha", URL: srv.URL})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrFetch))

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, http.StatusInternalServerError, ferr.StatusCode)
	require.Equal(t, "alpha", ferr.Source)
}

func TestHTTPFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := DefaultConfig()
	cfg.FetchTimeout = 50 * time.Millisecond

	start := time.Now()
	_, err := NewHTTPFetcher(cfg).Fetch(context.Background(), model.Source{Name: "slow", URL: srv.URL})
	require.True(t, errors.Is(err, ErrFetch))
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestHTTPFetcherBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 32

	_, err := NewHTTPFetcher(cfg).Fetch(context.Background(), model.Source{Name: "big", URL: srv.URL})
	require.True(t, errors.Is(err, ErrFetch))

	cfg.MaxBodyBytes = 64
	body, err := NewHTTPFetcher(cfg).Fetch(context.Background(), model.Source{Name: "big", URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, body, 64)
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPFetcher(DefaultConfig()).Fetch(context.Background(), model.Source{Name: "gone", URL: url})
	require.True(t, errors.Is(err, ErrFetch))
}

func TestDecodeText(t *testing.T) {
	require.Equal(t, "plain", DecodeText([]byte("plain")))
	require.Equal(t, "ü", DecodeText([]byte("ü")))
	require.Equal(t, "ü", DecodeText([]byte{0xfc}))
}
