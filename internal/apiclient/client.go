// Package apiclient is the single point where requests to the inventory API are built.
// Paths are relative to a fixed base URL and the bearer token is attached by the transport.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/serviceerr"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000/api"
	DefaultTimeout = 30 * time.Second
)

// TokenSource provides the access token attached to outgoing requests.
// An empty token results in an unauthenticated request.
type TokenSource interface {
	AccessToken() string
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
	limiter    *rate.Limiter
	telemetry  *telemetry
}

type Option func(*options)

// WithTokenSource injects the provider of the bearer token.
func WithTokenSource(tokens TokenSource) Option {
	return func(o *options) {
		o.tokens = tokens
	}
}

// WithHTTPClient replaces the underlying client. Its transport is wrapped, not replaced.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRateLimit limits outgoing requests to rps per second. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps <= 0 {
			o.limiter = nil
			return
		}

		o.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	o := &options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := &http.Client{}
	if o.httpClient != nil {
		*httpClient = *o.httpClient
	}

	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	if o.telemetry == nil {
		o.telemetry = newTelemetry(nil)
	}

	httpClient.Transport = &instrumentedRoundTripper{
		telemetry: o.telemetry,
		next: &bearerRoundTripper{
			tokens: o.tokens,
			next:   next,
		},
	}

	if httpClient.Timeout == 0 {
		httpClient.Timeout = o.timeout
	}

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		limiter:    o.limiter,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Upload sends the content of r as a multipart form file under field.
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}

	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("writing form file: %w", err)
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeBody(resp, out)
}

// Download streams a binary response body into w.
func (c *Client) Download(ctx context.Context, path string, query url.Values, w io.Writer) (contentType string, n int64, _ error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return "", 0, err
	}

	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	n, err = io.Copy(w, resp.Body)
	if err != nil {
		return "", n, fmt.Errorf("reading response body: %w", errors.Join(err, serviceerr.ErrTransport))
	}

	return resp.Header.Get("Content-Type"), n, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}

		reader = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeBody(resp, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.resolve(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// resolve joins path onto the base URL, keeping any query already present in path.
func (c *Client) resolve(path string) *url.URL {
	u := *c.baseURL

	rel, query, _ := strings.Cut(path, "?")
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/" + strings.TrimPrefix(rel, "/")
	u.RawQuery = query

	return &u
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slogctx.Debug(ctx, "Request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slogctx.Debug(ctx, "Request rejected", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)

		return nil, &ResponseError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	return resp, nil
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if raw, ok := out.(*json.RawMessage); ok {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Err: err}
		}

		*raw = b

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}
