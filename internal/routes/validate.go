package routes

import (
	"regexp"
	"strings"
)

// Messages reported by the route schema.
const (
	MsgNameRequired       = "Name is required"
	MsgModeRequired       = "Mode is required"
	MsgTargetRequired     = "Target is required"
	MsgTargetNeedsPort    = "Invalid Target, must have a port"
	MsgTargetNeedsScheme  = "Invalid Target, must start with http:// or https://"
	MsgHostRequired       = "Host is required"
	MsgHostInvalid        = "Host must be full domain ([sub.]domain.com) or an IP (IPs won't work with Let's Encrypt!)"
	MsgPathPrefixRequired = "Path Prefix is required"
	MsgPathPrefixInvalid  = "Path Prefix must start with / (e.g. /api). Do not include a domain/subdomain in it, use the Host for this."
	MsgSourceRequired     = "Source must at least be either Host or Path Prefix"
	MsgNameTaken          = "Route Name already exists. Name must be unique."
)

var (
	targetPortPattern   = regexp.MustCompile(`:[0-9]+$`)
	targetSchemePattern = regexp.MustCompile(`^https?://`)
)

// fieldRule checks a single field and returns the first violation, if any.
type fieldRule func(Route) string

var schema = []fieldRule{
	checkName,
	checkMode,
	checkTarget,
	checkHost,
	checkPathPrefix,
	checkSource,
}

// CheckSchema reports every structural violation of route, at most one per
// field, in field order.
func CheckSchema(route Route) []string {
	var problems []string
	for _, rule := range schema {
		if msg := rule(route); msg != "" {
			problems = append(problems, msg)
		}
	}
	return problems
}

// Validate gates a route before it is merged into cfg. It returns the first
// schema violation, or the duplicate-name problem when the schema passes but
// another route of cfg already uses the name. An empty result means valid.
func Validate(route Route, cfg Config) []string {
	for _, rule := range schema {
		if msg := rule(route); msg != "" {
			return []string{msg}
		}
	}
	if _, taken := cfg.Find(route.Name); taken {
		return []string{MsgNameTaken}
	}
	return []string{}
}

func checkName(r Route) string {
	if r.Name == "" {
		return MsgNameRequired
	}
	return ""
}

func checkMode(r Route) string {
	if r.Mode == "" {
		return MsgModeRequired
	}
	return ""
}

func checkTarget(r Route) string {
	if r.Target == "" {
		return MsgTargetRequired
	}
	switch r.Mode {
	case ModeServApp:
		if !targetPortPattern.MatchString(r.Target) {
			return MsgTargetNeedsPort
		}
	case ModeProxy:
		if !targetSchemePattern.MatchString(r.Target) {
			return MsgTargetNeedsScheme
		}
	}
	return ""
}

func checkHost(r Route) string {
	if !r.UseHost {
		return ""
	}
	if r.Host == "" {
		return MsgHostRequired
	}
	if !strings.ContainsAny(r.Host, ".:") {
		return MsgHostInvalid
	}
	return ""
}

func checkPathPrefix(r Route) string {
	if !r.UsePathPrefix {
		return ""
	}
	if r.PathPrefix == "" {
		return MsgPathPrefixRequired
	}
	if !strings.HasPrefix(r.PathPrefix, "/") {
		return MsgPathPrefixInvalid
	}
	return ""
}

func checkSource(r Route) string {
	if !r.UsePathPrefix && !r.UseHost {
		return MsgSourceRequired
	}
	return ""
}
