package standard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/ccheshirecat/routeassist/internal/favicon"
	"github.com/ccheshirecat/routeassist/internal/hostname"
	"github.com/ccheshirecat/routeassist/internal/routes"
)

var errInvalidRoute = errors.New("route is invalid")

func newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect, validate and plan proxy routes",
	}

	cmd.AddCommand(newRoutesListCmd())
	cmd.AddCommand(newRoutesSanitizeCmd())
	cmd.AddCommand(newRoutesValidateCmd())
	cmd.AddCommand(newRoutesSuggestCmd())
	cmd.AddCommand(newRoutesFaviconCmd())
	cmd.AddCommand(newRoutesContainersCmd())
	return cmd
}

func newRoutesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rendererFromCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			items, err := listRoutes(ctx, cmd)
			if err != nil {
				return err
			}
			filter, _ := cmd.Flags().GetString("filter")
			return out.routes(filterRoutes(items, filter))
		},
	}
	cmd.Flags().StringP("filter", "f", "", "fuzzy match on route names")
	return cmd
}

func listRoutes(ctx context.Context, cmd *cobra.Command) ([]routes.Route, error) {
	cfg, local, err := localSnapshot(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if local {
		return cfg.Routes(), nil
	}
	api, err := clientFromCmd(cmd)
	if err != nil {
		return nil, err
	}
	return api.ListRoutes(ctx)
}

// filterRoutes keeps the routes whose name fuzzily matches query, best
// match first.
func filterRoutes(items []routes.Route, query string) []routes.Route {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	names := make([]string, len(items))
	for i, route := range items {
		names[i] = strings.ToLower(route.Name)
	}
	matches := fuzzy.Find(strings.ToLower(query), names)
	filtered := make([]routes.Route, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, items[match.Index])
	}
	return filtered
}

func newRoutesSanitizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sanitize <route-file|->",
		Short: "Print the canonical form of a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rendererFromCmd(cmd)
			if err != nil {
				return err
			}
			route, err := readRoute(cmd, args[0])
			if err != nil {
				return err
			}
			return out.encode(routes.Sanitize(route))
		},
	}
}

func newRoutesValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <route-file|->",
		Short: "Validate a route against the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rendererFromCmd(cmd)
			if err != nil {
				return err
			}
			route, err := readRoute(cmd, args[0])
			if err != nil {
				return err
			}
			replacing, _ := cmd.Flags().GetString("replacing")

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			sanitized, problems, err := validateRoute(ctx, cmd, route, replacing)
			if err != nil {
				return err
			}
			valid, err := out.validation(sanitized, problems)
			if err != nil {
				return err
			}
			if !valid {
				return errInvalidRoute
			}
			return nil
		},
	}
	cmd.Flags().String("replacing", "", "name of the existing route being edited")
	return cmd
}

func validateRoute(ctx context.Context, cmd *cobra.Command, route routes.Route, replacing string) (*routes.Route, []string, error) {
	cfg, local, err := localSnapshot(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	if !local {
		api, err := clientFromCmd(cmd)
		if err != nil {
			return nil, nil, err
		}
		return api.Validate(ctx, route, replacing)
	}

	if replacing != "" {
		cfg = cfg.Without(replacing)
	}
	sanitized := routes.Sanitize(route)
	return &sanitized, routes.Validate(sanitized, cfg), nil
}

func newRoutesSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <name>",
		Short: "Suggest a Host for a new route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rendererFromCmd(cmd)
			if err != nil {
				return err
			}
			template, _ := cmd.Flags().GetString("template")

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			host, err := suggestHost(ctx, cmd, args[0], template)
			if err != nil {
				return err
			}
			return out.value("host", host)
		},
	}
	cmd.Flags().String("template", "", "existing route whose hostPrefix/hostSuffix apply")
	return cmd
}

func suggestHost(ctx context.Context, cmd *cobra.Command, name, templateName string) (string, error) {
	cfg, local, err := localSnapshot(ctx, cmd)
	if err != nil {
		return "", err
	}
	if !local {
		api, err := clientFromCmd(cmd)
		if err != nil {
			return "", err
		}
		origin, _ := cmd.Flags().GetString("origin")
		return api.Suggest(ctx, name, origin, templateName)
	}

	origin, err := originFromCmd(cmd)
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

func newRoutesFaviconCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favicon <name>",
		Short: "Print the favicon URL of a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rendererFromCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			iconURL, err := faviconURL(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			return out.value("url", iconURL)
		},
	}
}

func faviconURL(ctx context.Context, cmd *cobra.Command, name string) (string, error) {
	cfg, local, err := localSnapshot(ctx, cmd)
	if err != nil {
		return "", err
	}
	if !local {
		api, err := clientFromCmd(cmd)
		if err != nil {
			return "", err
		}
		origin, _ := cmd.Flags().GetString("origin")
		return api.Favicon(ctx, name, origin)
	}

	origin, err := originFromCmd(cmd)
	if err != nil {
		return "", err
	}
	route, ok := cfg.Find(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", routes.ErrNotFound, name)
	}
	return favicon.New(origin).URL(&route), nil
}

func newRoutesContainersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "containers <container>",
		Short: "List the SERVAPP routes targeting a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rendererFromCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			cfg, local, err := localSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			if local {
				return out.routes(routes.ContainerRoutes(cfg, args[0]))
			}
			api, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			items, err := api.ContainerRoutes(ctx, args[0])
			if err != nil {
				return err
			}
			return out.routes(items)
		},
	}
}
