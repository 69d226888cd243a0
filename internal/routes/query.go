package routes

import (
	"fmt"
	"regexp"
)

// ContainerRoutes returns the SERVAPP routes whose target points at the named
// container, with or without a scheme and port ("http://app:80", "app:80",
// "app").
func ContainerRoutes(cfg Config, container string) []Route {
	if container == "" {
		return []Route{}
	}
	pattern := regexp.MustCompile(fmt.Sprintf(`(?i)^(([a-z]+)://)?%s(:?[0-9]+)?$`, regexp.QuoteMeta(container)))

	matched := []Route{}
	for _, route := range cfg.Routes() {
		if route.Mode == ModeServApp && pattern.MatchString(route.Target) {
			matched = append(matched, route)
		}
	}
	return matched
}

// Names lists the route names in configuration order.
func Names(cfg Config) []string {
	names := make([]string, 0, len(cfg.Routes()))
	for _, route := range cfg.Routes() {
		names = append(names, route.Name)
	}
	return names
}
