package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "parsoid-go (https://github.com/open-cli-collective/parsoid-go)"
)

// Client is a MediaWiki action API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client for the action API endpoint at baseURL
// (for example https://en.wikipedia.org/w/api.php). A zero timeout uses
// the default.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes a GET request with the given query parameters and returns
// the response body.
func (c *Client) do(ctx context.Context, params url.Values) ([]byte, error) {
	// Every request asks for the modern JSON shape
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Handle error responses
	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.Unmarshal(respBody, &envelope); err != nil || envelope.Error == nil {
			return nil, &ErrorResponse{StatusCode: resp.StatusCode, Info: strings.TrimSpace(string(respBody))}
		}
		envelope.Error.StatusCode = resp.StatusCode
		return nil, envelope.Error
	}

	// The action API reports most failures with status 200
	var envelope errorEnvelope
	if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != nil {
		envelope.Error.StatusCode = resp.StatusCode
		return nil, envelope.Error
	}

	return respBody, nil
}

// Get performs a GET request against the action API.
func (c *Client) Get(ctx context.Context, params url.Values) ([]byte, error) {
	return c.do(ctx, params)
}
