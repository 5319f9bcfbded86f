package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mark-c-hall/movie-trivia/internal/config"
)

var ErrUnexpectedStatus = errors.New("unexpected http status")

// Opener opens a dataset location for reading.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

type Client struct {
	HTTPClient  http.Client
	APIToken    string
	Limiter     *rate.Limiter
	MaxRetries  int
	BaseBackoff time.Duration
}

func NewClient(cfg config.Config) *Client {
	limit := rate.Inf
	if cfg.Client.Limit > 0 {
		limit = rate.Every(time.Second / time.Duration(cfg.Client.Limit))
	}

	client := Client{
		HTTPClient:  http.Client{Timeout: cfg.Client.Timeout},
		APIToken:    cfg.Client.APIToken,
		Limiter:     rate.NewLimiter(limit, cfg.Client.Burst),
		MaxRetries:  cfg.Client.MaxRetries,
		BaseBackoff: cfg.Client.BaseBackoff,
	}
	return &client
}

// Open returns the contents at location. http and https URLs are fetched,
// anything else is read from the local filesystem.
func (c *Client) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !isRemote(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("error opening dataset file: %w", err)
		}
		return f, nil
	}

	resp, err := c.getHTTP(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("error fetching dataset: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, location, resp.StatusCode)
	}

	return resp.Body, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

func (c *Client) getHTTP(ctx context.Context, url string) (*http.Response, error) {
	attempts := max(c.MaxRetries, 0) + 1
	for attempt := range attempts {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("error creating http request: %w", err)
		}

		if c.APIToken != "" {
			req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.APIToken))
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error making http request: %w", err)
		}

		if !retryable(resp.StatusCode) {
			return resp, nil
		}
		resp.Body.Close()

		if attempt == attempts-1 {
			break
		}

		backoff := c.BaseBackoff << attempt
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("exceeded %d retries", c.MaxRetries)
}
