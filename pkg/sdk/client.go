// Package tiredex is a typed HTTP client for the tiredex search API.
package tiredex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// ErrUnauthorized is returned when the API rejects the configured key.
var ErrUnauthorized = errors.New("tiredex: unauthorized")

// Tire is a single catalog entry returned by the API. Fields beyond the
// typed ones are kept in Extra verbatim.
type Tire struct {
	BrandLocalizedName string                     `json:"brand_localized_name"`
	BrandCommonName    string                     `json:"brand_common_name"`
	Size               string                     `json:"size"`
	Categories         []string                   `json:"categories"`
	Extra              map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps unknown catalog fields in Extra.
func (t *Tire) UnmarshalJSON(data []byte) error {
	type alias Tire
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, known := range []string{"brand_localized_name", "brand_common_name", "size", "categories"} {
		delete(raw, known)
	}

	*t = Tire(a)
	if len(raw) > 0 {
		t.Extra = raw
	}
	return nil
}

// SearchResult is the response of a search call.
type SearchResult struct {
	Query   string `json:"query"`
	Count   int    `json:"count"`
	Results []Tire `json:"results"`
}

// APIError is a structured error response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tiredex: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client calls the tiredex HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search runs a free-text catalog search.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return SearchResult{}, fmt.Errorf("tiredex: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return SearchResult{}, fmt.Errorf("tiredex: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("tiredex: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SearchResult{}, c.decodeError(resp)
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SearchResult{}, fmt.Errorf("tiredex: decode response: %w", err)
	}
	return result, nil
}

// HealthReport is the response of a health call.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health reports the server's component health. A degraded server also
// returns a report, with the statuses of the failing checks filled in.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthReport{}, fmt.Errorf("tiredex: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthReport{}, fmt.Errorf("tiredex: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthReport{}, c.decodeError(resp)
	}

	var report HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return HealthReport{}, fmt.Errorf("tiredex: decode response: %w", err)
	}
	return report, nil
}

func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
		apiErr.Code = "unknown"
		apiErr.Message = resp.Status
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	}
	return apiErr
}
