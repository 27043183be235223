// Package client implements the HTTP boundary of the ADCM v2 API: a
// Requester capability that higher layers use to fetch and store resources
// without knowing anything about transport details.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const apiPrefix = "api/v2"

// Requester is the capability consumed by resource handles and configuration
// sessions. Implementations return a typed *ResponseError for non-2xx
// statuses and never retry on their own.
type Requester interface {
	Get(ctx context.Context, path []string, query url.Values) (*Response, error)
	Post(ctx context.Context, path []string, body any) (*Response, error)
	Patch(ctx context.Context, path []string, body any) (*Response, error)
	Delete(ctx context.Context, path []string) (*Response, error)
}

// Response wraps a successful API response body.
type Response struct {
	StatusCode int
	body       []byte
}

// AsObject decodes the response body as a JSON object.
func (r *Response) AsObject() (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(r.body, &decoded); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return decoded, nil
}

// AsArray decodes the response body as a JSON array.
func (r *Response) AsArray() ([]any, error) {
	var decoded []any
	if err := json.Unmarshal(r.body, &decoded); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}
	return decoded, nil
}

// HTTPRequester talks to one ADCM installation over net/http.
type HTTPRequester struct {
	base   string
	client *http.Client
	log    *slog.Logger
	token  string
}

// Option adjusts an HTTPRequester.
type Option func(*HTTPRequester)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *HTTPRequester) { r.client = c }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(r *HTTPRequester) { r.client.Timeout = d }
}

// WithLogger attaches a structured logger; requests are logged at debug
// level.
func WithLogger(log *slog.Logger) Option {
	return func(r *HTTPRequester) { r.log = log }
}

// WithToken attaches a pre-obtained API token to every request. Obtaining
// the token is the caller's concern.
func WithToken(token string) Option {
	return func(r *HTTPRequester) { r.token = token }
}

// New builds a requester for the ADCM installation at baseURL.
func New(baseURL string, opts ...Option) (*HTTPRequester, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	r := &HTTPRequester{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

func (r *HTTPRequester) Get(ctx context.Context, path []string, query url.Values) (*Response, error) {
	return r.request(ctx, http.MethodGet, path, query, nil)
}

func (r *HTTPRequester) Post(ctx context.Context, path []string, body any) (*Response, error) {
	return r.request(ctx, http.MethodPost, path, nil, body)
}

func (r *HTTPRequester) Patch(ctx context.Context, path []string, body any) (*Response, error) {
	return r.request(ctx, http.MethodPatch, path, nil, body)
}

func (r *HTTPRequester) Delete(ctx context.Context, path []string) (*Response, error) {
	return r.request(ctx, http.MethodDelete, path, nil, nil)
}

func (r *HTTPRequester) request(ctx context.Context, method string, path []string, query url.Values, body any) (*Response, error) {
	target := r.makeURL(path, query)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Token "+r.token)
	}

	started := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response of %s %s: %w", method, target, err)
	}

	r.log.DebugContext(ctx, "adcm api request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode >= 400 {
		return nil, &ResponseError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: payload}
	}

	return &Response{StatusCode: resp.StatusCode, body: payload}, nil
}

// makeURL joins the endpoint path onto the API root. ADCM endpoints are
// addressed with a trailing slash.
func (r *HTTPRequester) makeURL(path []string, query url.Values) string {
	target := r.base + "/" + apiPrefix + "/" + strings.Join(path, "/") + "/"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}
