package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// API Docs: https://open-meteo.com/en/docs
// Sample request: https://api.open-meteo.com/v1/forecast?latitude=49.4432174&longitude=7.7689951&timeformat=unixtime&models=best_match&current=temperature_2m,relativehumidity_2m,windspeed_10m
const (
	baseForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultModels   = "best_match"
)

// Options configures a ForecastClient. Zero values select the public API and
// the best_match model.
type Options struct {
	BaseURL   string
	Models    string
	UserAgent string
}

type ForecastClient struct {
	httpClient *http.Client
	baseURL    string
	models     string
	userAgent  string
}

func NewForecastClient(httpClient *http.Client, opts Options) *ForecastClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &ForecastClient{
		httpClient: httpClient,
		baseURL:    baseForecastURL,
		models:     defaultModels,
		userAgent:  opts.UserAgent,
	}
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}
	if opts.Models != "" {
		c.models = opts.Models
	}
	return c
}

// CurrentURL builds the request URL for the given coordinates and current
// variables. Coordinates are passed through verbatim.
func (c *ForecastClient) CurrentURL(latitude, longitude string, variables []string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("latitude", latitude)
	q.Set("longitude", longitude)
	q.Set("timeformat", "unixtime")
	q.Set("models", c.models)
	q.Set("current", strings.Join(variables, ","))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// GetCurrent fetches current conditions for the given coordinates.
func (c *ForecastClient) GetCurrent(ctx context.Context, latitude, longitude string, variables []string) (*CurrentAPIResponse, error) {
	u, err := c.CurrentURL(latitude, longitude, variables)
	if err != nil {
		return nil, err
	}
	return c.Fetch(ctx, u)
}

// Fetch performs a single GET against a fully formed forecast URL.
func (c *ForecastClient) Fetch(ctx context.Context, rawURL string) (*CurrentAPIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
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
		var apiErr ErrorAPIResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			return nil, fmt.Errorf("fetch returned status %d: %s", resp.StatusCode, apiErr.Reason)
		}
		return nil, fmt.Errorf("fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp CurrentAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &apiResp, nil
}
