package routes

// Mode selects how a route reaches its backend.
type Mode string

const (
	ModeServApp  Mode = "SERVAPP"
	ModeProxy    Mode = "PROXY"
	ModeStatic   Mode = "STATIC"
	ModeSPA      Mode = "SPA"
	ModeRedirect Mode = "REDIRECT"
)

// SmartShield holds the per-route request shielding settings.
type SmartShield struct {
	Enabled             bool    `json:"Enabled" toml:"Enabled" yaml:"Enabled"`
	PolicyStrictness    int     `json:"PolicyStrictness,omitempty" toml:"PolicyStrictness,omitempty" yaml:"PolicyStrictness,omitempty"`
	PerUserTimeBudget   float64 `json:"PerUserTimeBudget,omitempty" toml:"PerUserTimeBudget,omitempty" yaml:"PerUserTimeBudget,omitempty"`
	PerUserRequestLimit int     `json:"PerUserRequestLimit,omitempty" toml:"PerUserRequestLimit,omitempty" yaml:"PerUserRequestLimit,omitempty"`
}

// Route maps a virtual host and/or path prefix to a backend target.
type Route struct {
	Name          string       `json:"Name" toml:"Name" yaml:"Name"`
	Description   string       `json:"Description,omitempty" toml:"Description,omitempty" yaml:"Description,omitempty"`
	Mode          Mode         `json:"Mode" toml:"Mode" yaml:"Mode"`
	Target        string       `json:"Target" toml:"Target" yaml:"Target"`
	UseHost       bool         `json:"UseHost" toml:"UseHost" yaml:"UseHost"`
	Host          string       `json:"Host" toml:"Host" yaml:"Host"`
	UsePathPrefix bool         `json:"UsePathPrefix" toml:"UsePathPrefix" yaml:"UsePathPrefix"`
	PathPrefix    string       `json:"PathPrefix" toml:"PathPrefix" yaml:"PathPrefix"`
	SmartShield   *SmartShield `json:"SmartShield,omitempty" toml:"SmartShield,omitempty" yaml:"SmartShield,omitempty"`

	// HostPrefix and HostSuffix wrap suggested hostnames when the route is
	// used as a template for a new one.
	HostPrefix string `json:"hostPrefix,omitempty" toml:"hostPrefix,omitempty" yaml:"hostPrefix,omitempty"`
	HostSuffix string `json:"hostSuffix,omitempty" toml:"hostSuffix,omitempty" yaml:"hostSuffix,omitempty"`

	// LegacySmartShieldEnabled is the flat form flag older forms submit.
	// Sanitize folds it into SmartShield.Enabled.
	LegacySmartShieldEnabled *bool `json:"_SmartShield_Enabled,omitempty" toml:"_SmartShield_Enabled,omitempty" yaml:"_SmartShield_Enabled,omitempty"`
}

// ProxyConfig holds the proxied routes of a configuration.
type ProxyConfig struct {
	Routes []Route `json:"Routes" toml:"Routes" yaml:"Routes"`
}

// HTTPConfig is the HTTP section of a configuration.
type HTTPConfig struct {
	ProxyConfig ProxyConfig `json:"ProxyConfig" toml:"ProxyConfig" yaml:"ProxyConfig"`
}

// Config is the subset of the proxy configuration these helpers read.
type Config struct {
	HTTPConfig HTTPConfig `json:"HTTPConfig" toml:"HTTPConfig" yaml:"HTTPConfig"`
}

// Routes returns the configured routes.
func (c Config) Routes() []Route {
	return c.HTTPConfig.ProxyConfig.Routes
}

// Find returns the route with the given name.
func (c Config) Find(name string) (Route, bool) {
	for _, route := range c.Routes() {
		if route.Name == name {
			return route, true
		}
	}
	return Route{}, false
}

// Without returns a copy of the configuration minus the routes named name.
// It is used when an existing route is re-validated after an edit.
func (c Config) Without(name string) Config {
	kept := make([]Route, 0, len(c.Routes()))
	for _, route := range c.Routes() {
		if route.Name == name {
			continue
		}
		kept = append(kept, route)
	}
	out := c
	out.HTTPConfig.ProxyConfig.Routes = kept
	return out
}

// Clone returns a deep copy safe to hand to another goroutine.
func (c Config) Clone() Config {
	out := c
	if c.Routes() == nil {
		return out
	}
	items := make([]Route, len(c.Routes()))
	for i, route := range c.Routes() {
		items[i] = route.clone()
	}
	out.HTTPConfig.ProxyConfig.Routes = items
	return out
}

func (r Route) clone() Route {
	out := r
	if r.SmartShield != nil {
		shield := *r.SmartShield
		out.SmartShield = &shield
	}
	if r.LegacySmartShieldEnabled != nil {
		enabled := *r.LegacySmartShieldEnabled
		out.LegacySmartShieldEnabled = &enabled
	}
	return out
}
