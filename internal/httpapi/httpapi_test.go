package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccheshirecat/routeassist/internal/controller"
	"github.com/ccheshirecat/routeassist/internal/hostcheck"
	"github.com/ccheshirecat/routeassist/internal/routes"
)

func testConfig() routes.Config {
	var cfg routes.Config
	cfg.HTTPConfig.ProxyConfig.Routes = []routes.Route{
		{Name: "api", Mode: routes.ModeServApp, Target: "http://api:8080", UseHost: true, Host: "api.example.com"},
		{Name: "files", Mode: routes.ModeStatic, Target: "/srv", UsePathPrefix: true, PathPrefix: "/files"},
	}
	return cfg
}

func testResolver() hostcheck.Resolver {
	return hostcheck.ResolverFunc(func(_ context.Context, host string) (string, error) {
		if host == "example.com" {
			return "93.184.216.34", nil
		}
		return "", errors.New("lookup " + host + ": no such host")
	})
}

func newTestServer(t *testing.T, resolver hostcheck.Resolver, opts Options) *httptest.Server {
	t.Helper()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Debounce == 0 {
		opts.Debounce = 10 * time.Millisecond
	}
	ctrl := controller.New(routes.NewMemoryStore(testConfig()), resolver)
	srv := httptest.NewServer(New(ctrl, opts))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListRoutes(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	var items []routes.Route
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/routes", &items))
	assert.Equal(t, testConfig().Routes(), items)

	var matched []routes.Route
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/routes/containers/api", &matched))
	require.Len(t, matched, 1)
	assert.Equal(t, "api", matched[0].Name)
}

func TestSanitizeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	var out routes.Route
	status := postJSON(t, srv.URL+"/api/routes/sanitize", routes.Route{
		Name: " web ", Host: "stale.example.com", PathPrefix: "/stale",
	}, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "web", out.Name)
	assert.Empty(t, out.Host)
	assert.Empty(t, out.PathPrefix)
	assert.NotNil(t, out.SmartShield)

	resp, err := http.Post(srv.URL+"/api/routes/sanitize", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	route := routes.Route{
		Name: "api", Mode: routes.ModeServApp, Target: "http://api:8080", UseHost: true, Host: "api.example.com",
	}

	var rejected ValidationResponse
	require.Equal(t, http.StatusUnprocessableEntity, postJSON(t, srv.URL+"/api/routes/validate", route, &rejected))
	assert.Equal(t, routes.MsgNameTaken, rejected.Error)
	assert.Equal(t, []string{routes.MsgNameTaken}, rejected.Errors)
	assert.Nil(t, rejected.Route)

	var accepted ValidationResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/routes/validate?replacing=api", route, &accepted))
	require.NotNil(t, accepted.Route)
	assert.Equal(t, "api", accepted.Route.Name)
	assert.Empty(t, accepted.Errors)
}

func TestSuggestEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	var out map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/routes/suggest?name=web", &out))
	assert.Equal(t, "127.0.0.1:7351", out["host"])

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/routes/suggest?name=My+App&origin=https://cosmos.example.com", &out))
	assert.Equal(t, "my-app.cosmos.example.com", out["host"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/routes/suggest?name=web", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://localhost")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "localhost:7200", out["host"])

	require.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/routes/suggest?name=web&template=missing", &out))
	assert.Contains(t, out["error"], "route not found")
}

func TestSuggestUsesConfiguredOrigin(t *testing.T) {
	origin := routes.Origin{Scheme: "https", Host: "cosmos.example.com"}
	srv := newTestServer(t, nil, Options{Origin: &origin})

	var out map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/routes/suggest?name=web&origin=http://ignored.lan", &out))
	assert.Equal(t, "web.cosmos.example.com", out["host"])
}

func TestFaviconEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	var out map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/routes/files/favicon", &out))
	assert.Equal(t, "/assets/images/icons/folder.svg", out["url"])

	require.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/routes/missing/favicon", &out))
}

func TestDNSEndpoint(t *testing.T) {
	srv := newTestServer(t, testResolver(), Options{})

	var out map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/dns?host=example.com", &out))
	assert.Equal(t, "93.184.216.34", out["data"])

	out = nil
	require.Equal(t, http.StatusBadGateway, getJSON(t, srv.URL+"/api/dns?host=nope.example", &out))
	assert.Equal(t, "lookup nope.example: no such host", out["error"])

	require.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/dns", &out))

	noResolver := newTestServer(t, nil, Options{})
	require.Equal(t, http.StatusServiceUnavailable, getJSON(t, noResolver.URL+"/api/dns?host=example.com", &out))
}

func TestAPIKey(t *testing.T) {
	srv := newTestServer(t, nil, Options{APIKey: "secret"})

	require.Equal(t, http.StatusUnauthorized, getJSON(t, srv.URL+"/api/routes", nil))
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/routes?api_key=secret", nil))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/routes", nil)
	require.NoError(t, err)
	req.Header.Set(APIKeyHeader, "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHostCheckWebsocket(t *testing.T) {
	srv := newTestServer(t, testResolver(), Options{Debounce: 100 * time.Millisecond})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/hostcheck"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	for _, host := range []string{"exa", "examp", "example.com"} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(host)))
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var res hostcheck.Result
	require.NoError(t, conn.ReadJSON(&res))
	assert.Equal(t, hostcheck.Result{Host: "example.com", IP: "93.184.216.34"}, res)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("nope.example")))
	res = hostcheck.Result{}
	require.NoError(t, conn.ReadJSON(&res))
	assert.Equal(t, "nope.example", res.Host)
	assert.Equal(t, "lookup nope.example: no such host", res.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("10.0.0.1")))
	res = hostcheck.Result{}
	require.NoError(t, conn.ReadJSON(&res))
	assert.Equal(t, hostcheck.Result{Host: "10.0.0.1"}, res)
}

func TestHostCheckWithoutResolver(t *testing.T) {
	srv := newTestServer(t, nil, Options{})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/hostcheck"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
}
