package standard

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccheshirecat/routeassist/internal/hostcheck"
	"github.com/ccheshirecat/routeassist/internal/hostname"
)

func newHostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "Check where hostnames currently point",
	}
	cmd.PersistentFlags().Bool("local", false, "resolve with the system resolver instead of routeassistd")
	cmd.PersistentFlags().Duration("timeout", hostcheck.DefaultTimeout, "timeout of a single lookup")

	cmd.AddCommand(newHostsCheckCmd())
	cmd.AddCommand(newHostsWatchCmd())
	return cmd
}

func resolverFromCmd(cmd *cobra.Command) (hostcheck.Resolver, error) {
	if local, _ := cmd.Flags().GetBool("local"); local {
		return hostcheck.NetResolver{}, nil
	}
	return clientFromCmd(cmd)
}

func newHostsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <host>...",
		Short: "Resolve each domain-shaped host once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rendererFromCmd(cmd)
			if err != nil {
				return err
			}
			resolver, err := resolverFromCmd(cmd)
			if err != nil {
				return err
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			for _, host := range args {
				res := checkOnce(cmd.Context(), resolver, host, timeout)
				if err := out.hostResult(res); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// checkOnce is a single, undebounced check: IPs and other non-domain input
// are reported as empty results without a lookup.
func checkOnce(ctx context.Context, resolver hostcheck.Resolver, host string, timeout time.Duration) hostcheck.Result {
	name := hostname.StripPort(strings.TrimSpace(host))
	if !hostname.IsDomain(name) {
		return hostcheck.Result{Host: host}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ip, err := resolver.LookupHost(ctx, name)
	if err != nil {
		return hostcheck.Result{Host: host, Error: err.Error()}
	}
	return hostcheck.Result{Host: host, IP: ip}
}

func newHostsWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check hostnames read from stdin as they are typed",
		Long: "watch reads one Host field value per line from stdin and reports where it points once " +
			"input has settled for the debounce window. Bursts of lines only check the last one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rendererFromCmd(cmd)
			if err != nil {
				return err
			}
			delay, _ := cmd.Flags().GetDuration("debounce")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			results := make(chan hostcheck.Result, 16)
			report := func(res hostcheck.Result) {
				results <- res
			}

			if local, _ := cmd.Flags().GetBool("local"); local {
				checker, err := hostcheck.New(hostcheck.Options{
					Resolver: hostcheck.NetResolver{},
					Delay:    delay,
					Timeout:  timeout,
					OnResult: report,
				})
				if err != nil {
					return err
				}
				defer checker.Close()
				return watchLines(cmd.InOrStdin(), checker.Check, results, out, delay+timeout)
			}

			api, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			hosts := make(chan string)
			streamErr := make(chan error, 1)
			go func() { streamErr <- api.WatchHosts(ctx, hosts, report) }()

			send := func(host string) {
				select {
				case hosts <- host:
				case <-ctx.Done():
				}
			}
			watchErr := watchLines(cmd.InOrStdin(), send, results, out, delay+timeout)
			close(hosts)
			if err := <-streamErr; err != nil && watchErr == nil {
				return err
			}
			return watchErr
		},
	}
	cmd.Flags().Duration("debounce", hostcheck.DefaultDelay, "how long input has to settle before a lookup")
	return cmd
}

// watchLines feeds every non-empty line of in to check and prints results
// as they arrive. At end of input it waits up to grace for the result of
// the last line.
func watchLines(in io.Reader, check func(string), results <-chan hostcheck.Result, out *renderer, grace time.Duration) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
	}()

	last := ""
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				return drainLast(last, results, out, grace)
			}
			if host := strings.TrimSpace(line); host != "" {
				last = host
				check(host)
			}
		case res := <-results:
			if err := printWatched(out, res); err != nil {
				return err
			}
		}
	}
}

func drainLast(last string, results <-chan hostcheck.Result, out *renderer, grace time.Duration) error {
	if last == "" {
		return nil
	}
	deadline := time.After(grace)
	for {
		select {
		case res := <-results:
			if err := printWatched(out, res); err != nil {
				return err
			}
			if res.Host == last {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("no result for %s within %s", last, grace)
		}
	}
}

// printWatched stays silent for non-domain input, like the form does.
func printWatched(out *renderer, res hostcheck.Result) error {
	if res.Empty() {
		return nil
	}
	return out.hostResult(res)
}
