// Package archive provides a client for the Internet Archive's
// advancedsearch API, the catalog source for public-domain films.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// HTTP client settings
	defaultTimeout = 30 * time.Second

	// API settings
	defaultBaseURL    = "https://archive.org"
	defaultCollection = "feature_films"
	defaultPageSize   = 50
	maxPageSize       = 200
)

// Client is an Internet Archive catalog client.
type Client struct {
	http       *http.Client
	baseURL    string
	collection string
	logger     *slog.Logger
}

// Options configures a Client. The URL and collection fall back to the
// public archive when empty.
type Options struct {
	BaseURL    string
	Collection string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// New creates a new archive client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Collection == "" {
		opts.Collection = defaultCollection
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		collection: opts.Collection,
		logger:     opts.Logger,
	}
}

// ThumbnailURL returns the archive's thumbnail endpoint for an item.
func (c *Client) ThumbnailURL(identifier string) string {
	return c.baseURL + "/services/img/" + url.PathEscape(identifier)
}

// DetailsURL returns the archive's item page for an item.
func (c *Client) DetailsURL(identifier string) string {
	return c.baseURL + "/details/" + url.PathEscape(identifier)
}

// EmbedURL returns the archive's embeddable player page for an item.
func (c *Client) EmbedURL(identifier string) string {
	return c.baseURL + "/embed/" + url.PathEscape(identifier)
}

// doRequest executes a GET against the archive.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	// Build URL
	u := c.baseURL + path + "?" + query.Encode()

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Matinee/1.0")

	// Execute
	c.logger.Debug("archive request",
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Read body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Check status
	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
