package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is used when Options.BaseURL is empty
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultTimeout is also the minimum; paper analysis runs for minutes.
	DefaultTimeout = 200 * time.Second
)

// TokenSource supplies the bearer token for outgoing requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// SessionClearer drops the persisted session when the backend answers 401
type SessionClearer interface {
	ClearSession()
}

// Navigator sends the user back to the login entry point
type Navigator interface {
	RedirectToLogin()
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func()

func (f NavigatorFunc) RedirectToLogin() { f() }

// RequestHook runs on every request right before it is sent
type RequestHook func(req *http.Request)

// ResponseHook runs on every response before the body is interpreted
type ResponseHook func(req *http.Request, statusCode int, duration time.Duration)

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Navigator  Navigator
	Logger     *zerolog.Logger
}

// Client represents an HTTP client for the AI News Hub API
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	validate   *validator.Validate
	logger     zerolog.Logger

	mu         sync.RWMutex
	tokens     TokenSource
	clearer    SessionClearer
	navigator  Navigator
	onRequest  []RequestHook
	onResponse []ResponseHook
}

// New creates a new API client
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout < DefaultTimeout {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if opts.HTTPClient != nil {
		httpClient = withMinTimeout(opts.HTTPClient, timeout)
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "api-client").Logger()
	}

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		headers:    headers,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
		tokens:     opts.Tokens,
		navigator:  opts.Navigator,
	}
}

// BaseURL returns the API base the client sends requests to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient sets a custom HTTP client. Its timeout is raised to
// DefaultTimeout when shorter.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient = withMinTimeout(httpClient, DefaultTimeout)
}

// withMinTimeout copies hc, replacing a timeout below DefaultTimeout (or
// none at all) with fallback
func withMinTimeout(hc *http.Client, fallback time.Duration) *http.Client {
	clone := *hc
	if clone.Timeout < DefaultTimeout {
		clone.Timeout = fallback
	}
	return &clone
}

// SetTokenSource replaces the bearer token source
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

// SetSessionClearer registers what gets cleared on a 401
func (c *Client) SetSessionClearer(clearer SessionClearer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearer = clearer
}

// SetNavigator registers the login redirect used on a 401
func (c *Client) SetNavigator(navigator Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigator = navigator
}

// OnRequest appends a request hook
func (c *Client) OnRequest(hook RequestHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRequest = append(c.onRequest, hook)
}

// OnResponse appends a response hook
func (c *Client) OnResponse(hook ResponseHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResponse = append(c.onResponse, hook)
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends a request to path (relative to the base URL) and decodes the JSON
// response into out when out is non-nil. Failures are *TransportError,
// *APIError or *MalformedResponseError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.do(ctx, method, path, body, out)
	return err
}

// DoRaw sends a request like Do and returns the 2xx body without decoding it
func (c *Client) DoRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	return c.do(ctx, method, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	httpClient := c.httpClient
	requestHooks := c.onRequest
	responseHooks := c.onResponse
	c.mu.RUnlock()

	for _, hook := range requestHooks {
		hook(req)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", req.Header.Get("X-Request-ID")).
			Msg("HTTP request failed")
		return nil, &TransportError{Method: method, Path: path, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Timeout: isTimeout(err), Err: err}
	}

	duration := time.Since(start)
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Msg("HTTP request")

	for _, hook := range responseHooks {
		hook(req, resp.StatusCode, duration)
	}

	if err := c.handleResponse(path, resp.StatusCode, respBody, out); err != nil {
		return nil, err
	}
	return respBody, nil
}

// newRequest builds the request and runs the auth interceptor
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	req.Header.Set("X-Request-ID", ulid.Make().String())

	c.attachToken(req)

	return req, nil
}

// attachToken sets the Authorization header when a token is available.
// A failing token source never aborts the request.
func (c *Client) attachToken(req *http.Request) {
	c.mu.RLock()
	tokens := c.tokens
	c.mu.RUnlock()

	if tokens == nil {
		return
	}

	token, err := tokens.Token()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read session token, sending request without it")
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) handleResponse(path string, statusCode int, body []byte, out any) error {
	if statusCode == http.StatusUnauthorized {
		c.handleUnauthorized(path)
		return newAPIError(statusCode, body)
	}

	if statusCode < 200 || statusCode >= 300 {
		return newAPIError(statusCode, body)
	}

	if out == nil {
		return nil
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return &MalformedResponseError{Path: path, Err: errors.New("empty body"), Body: body}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedResponseError{Path: path, Err: err, Body: body}
	}

	if err := c.validateResponse(out); err != nil {
		return &MalformedResponseError{Path: path, Err: err, Body: body}
	}

	return nil
}

// handleUnauthorized clears the persisted session, then redirects to login.
// It runs exactly once per 401 response.
func (c *Client) handleUnauthorized(path string) {
	c.mu.RLock()
	clearer := c.clearer
	navigator := c.navigator
	c.mu.RUnlock()

	c.logger.Warn().Str("path", path).Msg("Session rejected by server, clearing stored session")

	if clearer != nil {
		clearer.ClearSession()
	}
	if navigator != nil {
		navigator.RedirectToLogin()
	}
}

// validateResponse applies validator tags on struct responses and on
// slices of structs. Other shapes pass through untouched.
func (c *Client) validateResponse(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return c.validate.Struct(v.Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if elem.Kind() == reflect.Pointer {
				if elem.IsNil() {
					continue
				}
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct {
				return nil
			}
			if err := c.validate.Struct(elem.Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// withQuery appends non-empty query values to path. query is not modified.
func withQuery(path string, query url.Values) string {
	params := make(url.Values, len(query))
	for key, values := range query {
		if len(values) > 0 && values[0] != "" {
			params[key] = values
		}
	}
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
