package hostname

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ccheshirecat/routeassist/internal/routes"
)

// NoPortAvailable is returned instead of a hostname once every port of the
// local range is taken. It is meant to be shown as is.
const NoPortAvailable = "NO MORE PORT AVAILABLE. PLEASE CLEAN YOUR URLS!"

// PortRange is a half-open range of local ports, [Start, End).
type PortRange struct {
	Start int
	End   int
}

var (
	// HTTPSPorts is scanned when the UI is served over https.
	HTTPSPorts = PortRange{Start: 7200, End: 7350}
	// HTTPPorts is scanned for every other scheme.
	HTTPPorts = PortRange{Start: 7351, End: 7500}
)

// Suggester proposes a Host for new routes based on where the UI is served.
type Suggester struct {
	origin routes.Origin
}

// NewSuggester constructs a Suggester for the given UI origin.
func NewSuggester(origin routes.Origin) *Suggester {
	return &Suggester{origin: origin}
}

// Suggest returns a subdomain of the UI's domain derived from name. When the
// UI is not served from a public domain it returns the first free host:port
// of the local range instead. template, when non-nil, contributes its
// HostPrefix and HostSuffix to subdomain suggestions.
func (s *Suggester) Suggest(name string, template *routes.Route, cfg routes.Config) string {
	host := s.origin.Hostname()

	if IsDomain(host) {
		res := Slug(name) + "." + host
		if template != nil {
			res = template.HostPrefix + res + template.HostSuffix
		}
		return res
	}

	return nextFreePort(host, s.portRange(), cfg)
}

func (s *Suggester) portRange() PortRange {
	if s.origin.Scheme == "https" {
		return HTTPSPorts
	}
	return HTTPPorts
}

func nextFreePort(host string, ports PortRange, cfg routes.Config) string {
	used := make(map[string]bool, len(cfg.Routes()))
	for _, route := range cfg.Routes() {
		used[route.Host] = true
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	for port := ports.Start; port < ports.End; port++ {
		candidate := host + ":" + strconv.Itoa(port)
		if !used[candidate] {
			return candidate
		}
	}
	return NoPortAvailable
}

// Slug turns a route name into a DNS label: lower case, with '/', '_' and
// whitespace turned into '-' and anything else outside [a-z0-9-] dropped.
func Slug(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '_' || unicode.IsSpace(r):
			return '-'
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		default:
			return -1
		}
	}, name)
}
