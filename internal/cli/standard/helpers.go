package standard

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccheshirecat/routeassist/internal/cli/client"
	"github.com/ccheshirecat/routeassist/internal/routes"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func clientFromCmd(cmd *cobra.Command) (*client.Client, error) {
	base, err := cmd.Flags().GetString("api")
	if err != nil {
		base = envOrDefault("ROUTEASSIST_API", client.DefaultBaseURL)
	}
	key, _ := cmd.Flags().GetString("api-key")
	return client.New(base, client.WithAPIKey(key))
}

// localStore returns the configuration file store when --config is set.
// A nil store means the command should go through routeassistd.
func localStore(cmd *cobra.Command) (routes.Store, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	store, err := routes.NewFileStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func localSnapshot(ctx context.Context, cmd *cobra.Command) (routes.Config, bool, error) {
	store, err := localStore(cmd)
	if err != nil || store == nil {
		return routes.Config{}, false, err
	}
	cfg, err := store.Snapshot(ctx)
	if err != nil {
		return routes.Config{}, false, err
	}
	return cfg, true, nil
}

func originFromCmd(cmd *cobra.Command) (routes.Origin, error) {
	raw, _ := cmd.Flags().GetString("origin")
	if raw == "" {
		return routes.Origin{}, fmt.Errorf("--origin is required when running against a local configuration")
	}
	return routes.ParseOrigin(raw)
}

// readRoute loads a route document from path; "-" reads JSON from stdin.
func readRoute(cmd *cobra.Command, path string) (routes.Route, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return routes.Route{}, fmt.Errorf("read stdin: %w", err)
		}
		return routes.DecodeRoute(data, routes.FormatJSON)
	}
	format, err := routes.FormatFromPath(path)
	if err != nil {
		return routes.Route{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return routes.Route{}, fmt.Errorf("read route: %w", err)
	}
	return routes.DecodeRoute(data, format)
}
