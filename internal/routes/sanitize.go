package routes

import "strings"

// Sanitize returns the canonical form of a route as entered in a form.
// The input is left untouched.
func Sanitize(route Route) Route {
	out := route.clone()

	if !out.UseHost {
		out.Host = ""
	}
	if !out.UsePathPrefix {
		out.PathPrefix = ""
	}

	out.Name = strings.TrimSpace(out.Name)

	if out.SmartShield == nil {
		out.SmartShield = &SmartShield{}
	}

	if out.LegacySmartShieldEnabled != nil {
		out.SmartShield.Enabled = *out.LegacySmartShieldEnabled
		out.LegacySmartShieldEnabled = nil
	}

	return out
}
