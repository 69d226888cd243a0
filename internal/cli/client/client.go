package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ccheshirecat/routeassist/internal/hostcheck"
	"github.com/ccheshirecat/routeassist/internal/routes"
)

// DefaultBaseURL is where routeassistd listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:7380"

const apiKeyHeader = "X-Routeassist-API-Key"

// Client wraps REST access to the routeassistd API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	apiKey     string
}

// Option customizes a Client.
type Option func(*Client)

// WithAPIKey sends key with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client with the provided base URL (e.g. http://127.0.0.1:7380).
func New(rawURL string, opts ...Option) (*Client, error) {
	if rawURL == "" {
		rawURL = DefaultBaseURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse url: %w", err)
	}
	c := &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a non-2xx answer from the daemon.
type APIError struct {
	Status   int
	Message  string
	Problems []string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: http %d", e.Status)
	}
	return fmt.Sprintf("client: http %d: %s", e.Status, e.Message)
}

var _ hostcheck.Resolver = (*Client)(nil)

// ListRoutes returns the daemon's configured routes.
func (c *Client) ListRoutes(ctx context.Context) ([]routes.Route, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/routes", nil, nil)
	if err != nil {
		return nil, err
	}
	var items []routes.Route
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ContainerRoutes returns the SERVAPP routes targeting container.
func (c *Client) ContainerRoutes(ctx context.Context, container string) ([]routes.Route, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/routes/containers/"+url.PathEscape(container), nil, nil)
	if err != nil {
		return nil, err
	}
	var items []routes.Route
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Sanitize returns the daemon's canonical form of route.
func (c *Client) Sanitize(ctx context.Context, route routes.Route) (*routes.Route, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/routes/sanitize", nil, route)
	if err != nil {
		return nil, err
	}
	var out routes.Route
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks route against the daemon's configuration. Problems with
// the route come back as a non-empty slice, not as an error.
func (c *Client) Validate(ctx context.Context, route routes.Route, replacing string) (*routes.Route, []string, error) {
	query := url.Values{}
	if replacing != "" {
		query.Set("replacing", replacing)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/routes/validate", query, route)
	if err != nil {
		return nil, nil, err
	}
	var out struct {
		Route *routes.Route `json:"route"`
	}
	if err := c.do(req, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity {
			return nil, apiErr.Problems, nil
		}
		return nil, nil, err
	}
	return out.Route, []string{}, nil
}

// Suggest asks for a Host for a new route. origin may be empty to let the
// daemon decide; template optionally names a route whose affixes apply.
func (c *Client) Suggest(ctx context.Context, name, origin, template string) (string, error) {
	query := url.Values{"name": {name}}
	if origin != "" {
		query.Set("origin", origin)
	}
	if template != "" {
		query.Set("template", template)
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/routes/suggest", query, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Host string `json:"host"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Host, nil
}

// Favicon returns the icon URL of the named route.
func (c *Client) Favicon(ctx context.Context, name, origin string) (string, error) {
	query := url.Values{}
	if origin != "" {
		query.Set("origin", origin)
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/routes/"+url.PathEscape(name)+"/favicon", query, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// LookupHost asks the daemon which address host resolves to. Failures carry
// the daemon's message so they can be shown to the user as is.
func (c *Client) LookupHost(ctx context.Context, host string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/dns", url.Values{"host": {host}}, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Data string `json:"data"`
	}
	if err := c.do(req, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", errors.New(apiErr.Message)
		}
		return "", err
	}
	return out.Data, nil
}

// WatchHosts streams every hostname received on hosts to the daemon's live
// checker and invokes handler for each result until hosts is closed, the
// context is cancelled or the server closes the connection.
func (c *Client) WatchHosts(ctx context.Context, hosts <-chan string, handler func(hostcheck.Result)) error {
	target := c.baseURL.ResolveReference(&url.URL{Path: "/ws/hostcheck"})
	switch target.Scheme {
	case "https":
		target.Scheme = "wss"
	default:
		target.Scheme = "ws"
	}

	header := http.Header{}
	if c.apiKey != "" {
		header.Set(apiKeyHeader, c.apiKey)
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 30 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, target.String(), header)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("client: dial hostcheck: %w", err)
	}
	defer conn.Close()

	readErr := make(chan error, 1)
	go func() {
		for {
			var res hostcheck.Result
			if err := conn.ReadJSON(&res); err != nil {
				readErr <- err
				return
			}
			if handler != nil {
				handler(res)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("client: hostcheck stream: %w", err)
		case host, ok := <-hosts:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
				select {
				case <-readErr:
				case <-time.After(5 * time.Second):
				}
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(host)); err != nil {
				return fmt.Errorf("client: send host: %w", err)
			}
		}
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	ref := &url.URL{Path: path}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	resolved := c.baseURL.ResolveReference(ref)
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("client: encode body: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, resolved.String(), &buf)
	if err != nil {
		return nil, fmt.Errorf("client: new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error  string   `json:"error"`
			Errors []string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Error)
			apiErr.Problems = payload.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
