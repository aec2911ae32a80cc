package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// API Docs:
// - https://geocode.maps.co/docs/endpoints/
// - https://nominatim.org/release-docs/develop/api/Search/
// Sample requests:
// - https://geocode.maps.co/search?q=Kaiserslautern&api_key=...
// - https://nominatim.openstreetmap.org/search?q=Kaiserslautern&format=json

// Options configures a Client.
type Options struct {
	BaseURL   string
	APIKey    string // sent as api_key when set
	Format    string // sent as format when set; Nominatim needs "json"
	UserAgent string
}

type Client struct {
	httpClient *http.Client
	opts       Options
}

func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		opts:       opts,
	}
}

// Search runs a forward geocoding query and returns the candidates in the
// order the service ranked them. Coordinates are not checked here.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("q", query)
	if c.opts.APIKey != "" {
		q.Set("api_key", c.opts.APIKey)
	}
	if c.opts.Format != "" {
		q.Set("format", c.opts.Format)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return results, nil
}
