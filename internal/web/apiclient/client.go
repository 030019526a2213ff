package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default timeout mirrors the shared HTTP client of the previous frontend.
const defaultTimeout = 10 * time.Second

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues authenticated JSON requests against the storefront backend.
type Client struct {
	base *url.URL
	http HTTPClient
}

// New constructs a Client for the given backend base URL.
func New(baseURL string, client HTTPClient) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base URL: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: parsed, http: client}, nil
}

// NewRequest builds a request against the backend, injecting the bearer token.
func (c *Client) NewRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// NewJSONRequest builds a request carrying a JSON-encoded payload.
func (c *Client) NewJSONRequest(ctx context.Context, method, endpoint string, payload any, token string) (*http.Request, error) {
	var buf bytes.Buffer
	if payload != nil {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("apiclient: encode payload: %w", err)
		}
	}
	req, err := c.NewRequest(ctx, method, endpoint, &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Do executes the request, translating transport failures into KindNetwork errors.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "request failed", cause: err}
	}
	return resp, nil
}

// DecodeJSON drains and decodes a response body into out.
func DecodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindGeneric, Status: resp.StatusCode, Message: "decode response", cause: err}
	}
	return nil
}

// Resolve joins the endpoint path onto the configured base URL.
func (c *Client) Resolve(endpoint string) string {
	if endpoint == "" {
		return c.base.String()
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	// Parse instead of stuffing the whole endpoint into Path: endpoints carry
	// query strings (filters, pagination, clearCart) that must stay queries.
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		ref = &url.URL{Path: strings.TrimPrefix(endpoint, "/")}
	}
	return c.base.ResolveReference(ref).String()
}

// ErrorFromResponse reads an error payload and classifies it by HTTP status.
// Backend error payloads carry an `error` string; some legacy endpoints use
// `mensaje` instead.
func ErrorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"mensaje"`
	}
	message := ""
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Error != "" {
				message = payload.Error
			} else if payload.Message != "" {
				message = payload.Message
			}
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &Error{
		Kind:    classify(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: message,
	}
}
