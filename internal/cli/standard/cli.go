package standard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccheshirecat/routeassist/internal/cli/client"
)

// Version is set during build using ldflags.
var Version = "dev"

// Execute runs the Cobra-based CLI entry point.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routectl",
		Short: "routeassist command-line interface",
		Long: "routectl sanitizes and validates proxy routes, suggests hostnames for new ones and " +
			"checks where hostnames point, either locally against a configuration file or through routeassistd.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("api", "a", envOrDefault("ROUTEASSIST_API", client.DefaultBaseURL), "routeassistd base URL")
	flags.String("api-key", envOrDefault("ROUTEASSIST_API_KEY", ""), "routeassistd API key")
	flags.StringP("config", "c", envOrDefault("ROUTEASSIST_CONFIG_PATH", ""), "proxy configuration file (json, toml or yaml); runs locally instead of through routeassistd")
	flags.String("origin", envOrDefault("ROUTEASSIST_ORIGIN", ""), "origin the management UI is served from (e.g. https://cosmos.example.com)")
	flags.StringP("output", "o", "auto", "output format: auto, text or json")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRoutesCmd())
	cmd.AddCommand(newHostsCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the routectl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "routectl %s\n", Version)
		},
	}
}
