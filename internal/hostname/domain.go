// Package hostname decides whether hostnames look like public domains and
// suggests hostnames for new routes.
package hostname

import (
	"net"
	"regexp"
	"strings"
)

var (
	labelPattern     = regexp.MustCompile(`^[a-zA-Z0-9-]{1,63}$`)
	tldPattern       = regexp.MustCompile(`^[a-zA-Z]{2,63}$`)
	dottedQuadPrefix = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+\.[0-9]+`)
)

// IsDomain reports whether host looks like a public domain name: one or more
// labels followed by an alphabetic TLD, where no label starts a "localhost"
// or dotted-quad run. Ports are not accepted; see StripPort.
func IsDomain(host string) bool {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	if !tldPattern.MatchString(labels[len(labels)-1]) {
		return false
	}

	offset := 0
	for _, label := range labels[:len(labels)-1] {
		rest := host[offset:]
		if strings.HasPrefix(rest, "localhost") || dottedQuadPrefix.MatchString(rest) {
			return false
		}
		if !labelPattern.MatchString(label) {
			return false
		}
		offset += len(label) + 1
	}
	return true
}

// StripPort removes a trailing :port from host. Values without a port,
// including bare IPv6 addresses, are returned unchanged.
func StripPort(host string) string {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	return h
}
