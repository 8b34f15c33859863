// Package moviedb provides a client for The Movie Database (TMDB) API.
package moviedb

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
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultLanguage     = "en-US"
)

// Poster and backdrop size tokens accepted by ImageURL.
const (
	SizeSmall    = "small"
	SizeMedium   = "medium"
	SizeLarge    = "large"
	SizeOriginal = "original"
)

// Client is a TMDB API client. Request pacing is the caller's concern;
// the enrichment resolver spaces lookups before they reach this layer.
type Client struct {
	http         *http.Client
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	logger       *slog.Logger
}

// Options configures a Client. APIKey is required for live requests;
// the URL and language fields fall back to TMDB defaults when empty.
type Options struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Logger       *slog.Logger
}

// New creates a new TMDB client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = defaultImageBaseURL
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(opts.ImageBaseURL, "/"),
		language:     opts.Language,
		logger:       opts.Logger,
	}
}

// ImageURL builds a full image URL from a poster or backdrop reference
// returned by search. Unknown size tokens resolve to the medium
// variant. Returns "" for an empty reference.
func (c *Client) ImageURL(ref, size string) string {
	if ref == "" {
		return ""
	}

	var variant string
	switch size {
	case SizeSmall:
		variant = "w185"
	case SizeLarge:
		variant = "w780"
	case SizeOriginal:
		variant = "original"
	default:
		variant = "w342"
	}

	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.imageBaseURL + "/" + variant + ref
}

// doRequest executes an authenticated GET against the TMDB API.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)

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
	c.logger.Debug("moviedb request",
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
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
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
