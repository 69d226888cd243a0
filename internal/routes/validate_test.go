package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRoute() Route {
	return Route{
		Name:    "app",
		Mode:    ModeServApp,
		Target:  "http://app:8080",
		UseHost: true,
		Host:    "app.example.com",
	}
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Route)
		want   []string
	}{
		{name: "valid", mutate: func(*Route) {}, want: []string{}},
		{name: "empty name", mutate: func(r *Route) { r.Name = "" }, want: []string{MsgNameRequired}},
		{name: "empty mode", mutate: func(r *Route) { r.Mode = "" }, want: []string{MsgModeRequired}},
		{name: "empty target", mutate: func(r *Route) { r.Target = "" }, want: []string{MsgTargetRequired}},
		{name: "servapp without port", mutate: func(r *Route) { r.Target = "backend" }, want: []string{MsgTargetNeedsPort}},
		{name: "servapp with port", mutate: func(r *Route) { r.Target = "backend:8080" }, want: []string{}},
		{
			name:   "proxy without scheme",
			mutate: func(r *Route) { r.Mode = ModeProxy; r.Target = "backend:8080" },
			want:   []string{MsgTargetNeedsScheme},
		},
		{
			name:   "proxy with https",
			mutate: func(r *Route) { r.Mode = ModeProxy; r.Target = "https://backend" },
			want:   []string{},
		},
		{
			name:   "static accepts any target",
			mutate: func(r *Route) { r.Mode = ModeStatic; r.Target = "/srv/www" },
			want:   []string{},
		},
		{name: "host required", mutate: func(r *Route) { r.Host = "" }, want: []string{MsgHostRequired}},
		{name: "bare hostname", mutate: func(r *Route) { r.Host = "localhost" }, want: []string{MsgHostInvalid}},
		{name: "ip and port", mutate: func(r *Route) { r.Host = "192.168.1.2:7200" }, want: []string{}},
		{
			name:   "path prefix required",
			mutate: func(r *Route) { r.UsePathPrefix = true },
			want:   []string{MsgPathPrefixRequired},
		},
		{
			name:   "path prefix without slash",
			mutate: func(r *Route) { r.UsePathPrefix = true; r.PathPrefix = "api" },
			want:   []string{MsgPathPrefixInvalid},
		},
		{
			name:   "path prefix only",
			mutate: func(r *Route) { r.UseHost = false; r.Host = ""; r.UsePathPrefix = true; r.PathPrefix = "/api" },
			want:   []string{},
		},
		{
			name:   "no source",
			mutate: func(r *Route) { r.UseHost = false; r.Host = "" },
			want:   []string{MsgSourceRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := validRoute()
			tt.mutate(&route)
			assert.Equal(t, tt.want, Validate(route, Config{}))
		})
	}
}

func TestValidateFailsFast(t *testing.T) {
	route := Route{}

	assert.Equal(t, []string{MsgNameRequired}, Validate(route, Config{}))
	assert.Equal(t, []string{
		MsgNameRequired,
		MsgModeRequired,
		MsgTargetRequired,
		MsgSourceRequired,
	}, CheckSchema(route))
}

func TestValidateDuplicateName(t *testing.T) {
	cfg := configWith(Route{Name: "api", Mode: ModeProxy, Target: "http://api", UseHost: true, Host: "api.example.com"})

	route := validRoute()
	route.Name = "api"
	assert.Equal(t, []string{MsgNameTaken}, Validate(route, cfg))

	route.Name = "web"
	assert.Empty(t, Validate(route, cfg))

	// schema problems win over the uniqueness check
	route.Name = "api"
	route.Mode = ""
	assert.Equal(t, []string{MsgModeRequired}, Validate(route, cfg))
}

func TestValidateDoesNotMutate(t *testing.T) {
	route := validRoute()
	route.Name = " padded "
	before := route
	cfg := configWith(validRoute())

	Validate(route, cfg)
	assert.Equal(t, before, route)
	assert.Equal(t, []Route{validRoute()}, cfg.Routes())
}

func configWith(items ...Route) Config {
	var cfg Config
	cfg.HTTPConfig.ProxyConfig.Routes = items
	return cfg
}
