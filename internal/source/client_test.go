package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/mark-c-hall/movie-trivia/internal/config"
)

func newTestServerClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := &Client{
		HTTPClient:  http.Client{Timeout: 5 * time.Second},
		APIToken:    "test-token",
		Limiter:     rate.NewLimiter(rate.Inf, 1),
		MaxRetries:  3,
		BaseBackoff: 10 * time.Millisecond,
	}
	return client, server
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestOpen_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moviedata.txt")
	require.NoError(t, os.WriteFile(path, []byte("meryl streep, doubt\n"), 0o644))

	client := NewClient(config.Config{})
	rc, err := client.Open(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "meryl streep, doubt\n", readAll(t, rc))
}

func TestOpen_MissingFile(t *testing.T) {
	client := NewClient(config.Config{})

	_, err := client.Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpen_Remote(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "title,critic,audience\ndoubt,79,78\n")
	})
	client, server := newTestServerClient(handler)
	defer server.Close()

	rc, err := client.Open(context.Background(), server.URL+"/movieratings.csv")
	require.NoError(t, err)

	assert.Equal(t, "title,critic,audience\ndoubt,79,78\n", readAll(t, rc))
}

func TestOpen_RemoteNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	client, server := newTestServerClient(handler)
	defer server.Close()

	_, err := client.Open(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestGetHTTP_BearerToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})
	client, server := newTestServerClient(handler)
	defer server.Close()

	resp, err := client.getHTTP(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestGetHTTP_NoTokenNoHeader(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})
	client, server := newTestServerClient(handler)
	defer server.Close()
	client.APIToken = ""

	resp, err := client.getHTTP(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestGetHTTP_RetryOn429(t *testing.T) {
	var attempts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch attempts.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
	client, server := newTestServerClient(handler)
	defer server.Close()

	resp, err := client.getHTTP(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(3), attempts.Load())
}

func TestGetHTTP_ExhaustedRetries(t *testing.T) {
	var attempts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	client, server := newTestServerClient(handler)
	defer server.Close()

	_, err := client.getHTTP(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(client.MaxRetries+1), attempts.Load())
}

func TestGetHTTP_ContextCancelled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	client, server := newTestServerClient(handler)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.getHTTP(ctx, server.URL)
	assert.Error(t, err)
}

func TestGetHTTP_ZeroRetriesStillSendsRequest(t *testing.T) {
	var attempts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, "jaws,97,90\n")
	})
	client, server := newTestServerClient(handler)
	defer server.Close()
	client.MaxRetries = 0

	rc, err := client.Open(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "jaws,97,90\n", readAll(t, rc))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestGetHTTP_RetryOn503(t *testing.T) {
	var attempts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	client, server := newTestServerClient(handler)
	defer server.Close()

	resp, err := client.getHTTP(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(2), attempts.Load())
}

func TestGetHTTP_NoBackoffAfterLastAttempt(t *testing.T) {
	var attempts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client, server := newTestServerClient(handler)
	defer server.Close()
	client.MaxRetries = 1
	client.BaseBackoff = 200 * time.Millisecond

	start := time.Now()
	_, err := client.getHTTP(context.Background(), server.URL)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Less(t, elapsed, 2*client.BaseBackoff, "only the backoff between the two attempts is waited")
}
