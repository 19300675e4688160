package providers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

const maxBodyBytes = 4 << 20

// HTTPError carries the status and a body snippet of a non-2xx response.
type HTTPError struct {
	Provider   string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s %s returned status %d: %s", e.Provider, e.Method, e.URL, e.StatusCode, e.Body)
}

// HTTPClient is the shared transport of the upstream clients.
type HTTPClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
	header     http.Header
}

// ClientOption customizes an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *HTTPClient) { c.header.Set(key, value) }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// NewHTTPClient creates a new HTTPClient. The timeout is a safety net; the
// caller's context normally expires first.
func NewHTTPClient(name, baseURL string, timeout time.Duration, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider name.
func (c *HTTPClient) Name() string {
	return c.name
}

// GetJSON performs a GET request on path and decodes the JSON body into out.
// 404 maps to ErrNotFound and 400 to ErrInvalidRequest.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := decodedBody(resp)
	if err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}
	defer func() {
		_ = body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		herr := &HTTPError{
			Provider:   c.name,
			Method:     req.Method,
			URL:        redact(u),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, herr)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %w", ErrInvalidRequest, herr)
		default:
			return herr
		}
	}

	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "gzip":
		return gzip.NewReader(resp.Body)
	default:
		return io.NopCloser(resp.Body), nil
	}
}

// redact hides credentials passed as query parameters.
func redact(u *url.URL) string {
	cp := *u
	q := cp.Query()
	for _, k := range []string{"key", "apikey", "api_key", "access_token"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	cp.RawQuery = q.Encode()
	return cp.String()
}
