package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/ccheshirecat/routeassist/internal/favicon"
	"github.com/ccheshirecat/routeassist/internal/hostcheck"
	"github.com/ccheshirecat/routeassist/internal/hostname"
	"github.com/ccheshirecat/routeassist/internal/routes"
)

// Controller runs the route helpers against the current configuration.
type Controller struct {
	store    routes.Store
	resolver hostcheck.Resolver
}

// New constructs a Controller. resolver may be nil, in which case lookups
// report the resolver as unavailable.
func New(store routes.Store, resolver hostcheck.Resolver) *Controller {
	return &Controller{store: store, resolver: resolver}
}

// ValidationError carries the problems found with a submitted route.
type ValidationError struct{ Problems []string }

func (e ValidationError) Error() string { return strings.Join(e.Problems, "; ") }

// RuntimeUnavailableError indicates a required collaborator is absent.
type RuntimeUnavailableError struct{ Component string }

func (e RuntimeUnavailableError) Error() string { return fmt.Sprintf("%s unavailable", e.Component) }

// List returns all configured routes.
func (c *Controller) List(ctx context.Context) ([]routes.Route, error) {
	cfg, err := c.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	items := cfg.Routes()
	if items == nil {
		items = []routes.Route{}
	}
	return items, nil
}

// Sanitize normalizes a submitted route.
func (c *Controller) Sanitize(route routes.Route) routes.Route {
	return routes.Sanitize(route)
}

// Validate sanitizes route and checks it against the configuration. When
// replacing names an existing route being edited, that route is ignored for
// the uniqueness check.
func (c *Controller) Validate(ctx context.Context, route routes.Route, replacing string) (routes.Route, error) {
	cfg, err := c.store.Snapshot(ctx)
	if err != nil {
		return routes.Route{}, err
	}
	if replacing != "" {
		cfg = cfg.Without(replacing)
	}

	sanitized := routes.Sanitize(route)
	if problems := routes.Validate(sanitized, cfg); len(problems) > 0 {
		return routes.Route{}, ValidationError{Problems: problems}
	}
	return sanitized, nil
}

// Suggest proposes a Host for a route called name, as seen from origin.
// templateName optionally names an existing route whose host affixes apply.
func (c *Controller) Suggest(ctx context.Context, origin routes.Origin, name, templateName string) (string, error) {
	cfg, err := c.store.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	var template *routes.Route
	if templateName != "" {
		found, ok := cfg.Find(templateName)
		if !ok {
			return "", fmt.Errorf("%w: %s", routes.ErrNotFound, templateName)
		}
		template = &found
	}

	return hostname.NewSuggester(origin).Suggest(name, template, cfg), nil
}

// Favicon returns the icon URL of the named route.
func (c *Controller) Favicon(ctx context.Context, origin routes.Origin, name string) (string, error) {
	cfg, err := c.store.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	route, ok := cfg.Find(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", routes.ErrNotFound, name)
	}
	return favicon.New(origin).URL(&route), nil
}

// Containers returns the SERVAPP routes pointing at a container.
func (c *Controller) Containers(ctx context.Context, container string) ([]routes.Route, error) {
	cfg, err := c.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return routes.ContainerRoutes(cfg, container), nil
}

// Lookup resolves host once, without debouncing.
func (c *Controller) Lookup(ctx context.Context, host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", ValidationError{Problems: []string{"host is required"}}
	}
	if c.resolver == nil {
		return "", RuntimeUnavailableError{Component: "dns resolver"}
	}
	return c.resolver.LookupHost(ctx, host)
}

// NewChecker returns a debounced checker backed by the controller's resolver.
func (c *Controller) NewChecker(opts hostcheck.Options) (*hostcheck.Checker, error) {
	if c.resolver == nil {
		return nil, RuntimeUnavailableError{Component: "dns resolver"}
	}
	opts.Resolver = c.resolver
	return hostcheck.New(opts)
}
