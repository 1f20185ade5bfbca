// JSON API client shared by every upstream provider
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/reminis/internal/shared"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "reminis/0.1"

// ClientOpts configures an [APIClient].
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	Limiter    *rate.Limiter
}

// APIClient performs JSON requests against a single upstream base URL.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// NewAPIClient creates a client. A nil HTTPClient uses [http.DefaultClient]; a nil Limiter disables throttling.
func NewAPIClient(opts ClientOpts) *APIClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	return &APIClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		userAgent:  opts.UserAgent,
		limiter:    opts.Limiter,
	}
}

// BaseURL returns the upstream base URL.
func (a *APIClient) BaseURL() string {
	return a.baseURL
}

// HTTPClient returns the underlying [http.Client].
func (a *APIClient) HTTPClient() *http.Client {
	return a.httpClient
}

// APIError is a non-2xx upstream response.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Unwrap maps throttling and server errors to [shared.ErrServiceUnavailable], everything else to [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500 {
		return shared.ErrServiceUnavailable
	}
	return shared.ErrAPIRequest
}

// GetJSON performs a GET request to path with query and decodes the response into out.
func (a *APIClient) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return a.do(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON performs a POST request to path with body encoded as JSON and decodes the response into out.
func (a *APIClient) PostJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return a.do(ctx, http.MethodPost, path, query, data, out)
}

func (a *APIClient) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
		}
	}

	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: data}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}
