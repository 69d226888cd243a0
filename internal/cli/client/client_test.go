package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccheshirecat/routeassist/internal/controller"
	"github.com/ccheshirecat/routeassist/internal/hostcheck"
	"github.com/ccheshirecat/routeassist/internal/httpapi"
	"github.com/ccheshirecat/routeassist/internal/routes"
)

func newTestClient(t *testing.T, apiKey string, opts ...Option) *Client {
	t.Helper()
	var cfg routes.Config
	cfg.HTTPConfig.ProxyConfig.Routes = []routes.Route{
		{Name: "api", Mode: routes.ModeServApp, Target: "http://api:8080", UseHost: true, Host: "api.example.com", HostPrefix: "dev-"},
	}
	resolver := hostcheck.ResolverFunc(func(_ context.Context, host string) (string, error) {
		if strings.HasSuffix(host, "example.com") {
			return "93.184.216.34", nil
		}
		return "", errors.New("lookup " + host + ": no such host")
	})
	handler := httpapi.New(controller.New(routes.NewMemoryStore(cfg), resolver), httpapi.Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Debounce: 20 * time.Millisecond,
		APIKey:   apiKey,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL.String())

	_, err = New("://bad")
	require.Error(t, err)
}

func TestRoutes(t *testing.T) {
	c := newTestClient(t, "")
	ctx := context.Background()

	items, err := c.ListRoutes(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "api", items[0].Name)

	items, err = c.ContainerRoutes(ctx, "api")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	sanitized, err := c.Sanitize(ctx, routes.Route{Name: " web ", Host: "x.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "web", sanitized.Name)
	assert.Empty(t, sanitized.Host)
}

func TestValidate(t *testing.T) {
	c := newTestClient(t, "")
	ctx := context.Background()
	route := routes.Route{Name: "api", Mode: routes.ModeServApp, Target: "http://api:8080", UseHost: true, Host: "api.example.com"}

	got, problems, err := c.Validate(ctx, route, "")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []string{routes.MsgNameTaken}, problems)

	got, problems, err = c.Validate(ctx, route, "api")
	require.NoError(t, err)
	assert.Empty(t, problems)
	require.NotNil(t, got)
	assert.NotNil(t, got.SmartShield)
}

func TestSuggestAndFavicon(t *testing.T) {
	c := newTestClient(t, "")
	ctx := context.Background()

	host, err := c.Suggest(ctx, "web", "https://cosmos.example.com", "api")
	require.NoError(t, err)
	assert.Equal(t, "dev-web.cosmos.example.com", host)

	host, err = c.Suggest(ctx, "web", "", "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7351", host)

	_, err = c.Suggest(ctx, "web", "", "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	iconURL, err := c.Favicon(ctx, "api", "")
	require.NoError(t, err)
	assert.Equal(t, "/cosmos/api/favicon?q=http%3A%2F%2Fapi%3A8080", iconURL)
}

func TestLookupHost(t *testing.T) {
	c := newTestClient(t, "")
	ctx := context.Background()

	ip, err := c.LookupHost(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "93.184.216.34", ip)

	_, err = c.LookupHost(ctx, "nope.lan")
	require.EqualError(t, err, "lookup nope.lan: no such host")
}

func TestAPIKey(t *testing.T) {
	ctx := context.Background()

	_, err := newTestClient(t, "secret").ListRoutes(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = newTestClient(t, "secret", WithAPIKey("secret")).ListRoutes(ctx)
	require.NoError(t, err)
}

func TestWatchHosts(t *testing.T) {
	c := newTestClient(t, "secret", WithAPIKey("secret"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hosts := make(chan string)
	results := make(chan hostcheck.Result, 4)
	done := make(chan error, 1)
	go func() {
		done <- c.WatchHosts(ctx, hosts, func(res hostcheck.Result) { results <- res })
	}()

	hosts <- "www.example.com"
	select {
	case res := <-results:
		assert.Equal(t, hostcheck.Result{Host: "www.example.com", IP: "93.184.216.34"}, res)
	case <-ctx.Done():
		t.Fatal("no result")
	}

	close(hosts)
	require.NoError(t, <-done)
}
