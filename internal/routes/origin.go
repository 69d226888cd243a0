package routes

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Origin is the scheme and authority the management UI is served from.
type Origin struct {
	Scheme string
	// Host is the authority, possibly with a port.
	Host string
}

// ParseOrigin parses values such as "https://cosmos.example.com" or
// "http://192.168.1.10:8080". Paths are ignored.
func ParseOrigin(raw string) (Origin, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Origin{}, fmt.Errorf("routes: origin required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return Origin{}, fmt.Errorf("routes: parse origin: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return Origin{}, fmt.Errorf("routes: origin %q must include scheme and host", raw)
	}

	host := normalizeHostname(parsed.Hostname())
	if port := parsed.Port(); port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return Origin{Scheme: strings.ToLower(parsed.Scheme), Host: host}, nil
}

func normalizeHostname(host string) string {
	host = strings.ToLower(host)
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

// Hostname returns the origin host without its port or IPv6 brackets.
func (o Origin) Hostname() string {
	if host, _, err := net.SplitHostPort(o.Host); err == nil {
		return host
	}
	return strings.Trim(o.Host, "[]")
}

// String renders the origin as scheme://host.
func (o Origin) String() string {
	return o.Scheme + "://" + o.Host
}

// Of returns where a route is reachable: its Host when it uses one, the UI
// origin otherwise, followed by its path prefix when it uses one.
func (o Origin) Of(route Route) string {
	base := o.String()
	if route.UseHost {
		base = route.Host
	}
	if route.UsePathPrefix {
		base += route.PathPrefix
	}
	return base
}

// Full is Of with a scheme guaranteed. Values without one inherit the UI's
// scheme; anything but plain http becomes https.
func (o Origin) Full(route Route) string {
	return o.WithScheme(o.Of(route))
}

// WithScheme prefixes raw with the UI's scheme unless it already carries
// http:// or https://.
func (o Origin) WithScheme(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if o.Scheme == "http" {
		return "http://" + raw
	}
	return "https://" + raw
}
