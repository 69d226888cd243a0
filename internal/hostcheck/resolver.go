package hostcheck

import (
	"context"
	"fmt"
	"net"
)

// Resolver answers which address a hostname currently points to.
type Resolver interface {
	LookupHost(ctx context.Context, host string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, host string) (string, error)

// LookupHost calls f.
func (f ResolverFunc) LookupHost(ctx context.Context, host string) (string, error) {
	return f(ctx, host)
}

// NetResolver resolves through the host's resolver configuration.
type NetResolver struct {
	Resolver *net.Resolver
}

// LookupHost returns the first address host resolves to.
func (n NetResolver) LookupHost(ctx context.Context, host string) (string, error) {
	resolver := n.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupHost(ctx, host)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("lookup %s: no addresses", host)
	}
	return addrs[0], nil
}
