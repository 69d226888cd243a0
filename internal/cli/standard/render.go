package standard

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ccheshirecat/routeassist/internal/hostcheck"
	"github.com/ccheshirecat/routeassist/internal/routes"
)

type renderer struct {
	out  io.Writer
	json bool

	ok    lipgloss.Style
	bad   lipgloss.Style
	info  lipgloss.Style
	faint lipgloss.Style
	head  lipgloss.Style
}

func rendererFromCmd(cmd *cobra.Command) (*renderer, error) {
	out := cmd.OutOrStdout()
	mode, _ := cmd.Flags().GetString("output")

	asJSON := false
	switch strings.ToLower(mode) {
	case "", "auto":
		// Pipes get JSON, terminals get text.
		if f, ok := out.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
			asJSON = true
		}
	case "json":
		asJSON = true
	case "text":
	default:
		return nil, fmt.Errorf("output format %q not supported", mode)
	}

	lr := lipgloss.NewRenderer(out)
	return &renderer{
		out:   out,
		json:  asJSON,
		ok:    lr.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		bad:   lr.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		info:  lr.NewStyle().Foreground(lipgloss.Color("6")),
		faint: lr.NewStyle().Faint(true),
		head:  lr.NewStyle().Bold(true),
	}, nil
}

func (r *renderer) encode(payload any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func (r *renderer) routes(items []routes.Route) error {
	if r.json {
		return r.encode(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(r.out, "No routes found")
		return nil
	}
	fmt.Fprintln(r.out, r.head.Render(fmt.Sprintf("%-24s %-10s %-32s %s", "NAME", "MODE", "SOURCE", "TARGET")))
	for _, route := range items {
		fmt.Fprintf(r.out, "%-24s %-10s %-32s %s\n", route.Name, route.Mode, source(route), route.Target)
	}
	return nil
}

func source(route routes.Route) string {
	var parts []string
	if route.UseHost {
		parts = append(parts, route.Host)
	}
	if route.UsePathPrefix {
		parts = append(parts, route.PathPrefix)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "")
}

type validationOutput struct {
	Route  *routes.Route `json:"route,omitempty"`
	Errors []string      `json:"errors"`
}

// validation prints the outcome of a validation and reports whether the
// route passed.
func (r *renderer) validation(route *routes.Route, problems []string) (bool, error) {
	if problems == nil {
		problems = []string{}
	}
	valid := len(problems) == 0
	if r.json {
		out := validationOutput{Errors: problems}
		if valid {
			out.Route = route
		}
		return valid, r.encode(out)
	}
	if valid {
		name := ""
		if route != nil {
			name = route.Name
		}
		fmt.Fprintf(r.out, "%s route %q is valid\n", r.ok.Render("✓"), name)
		return true, nil
	}
	for _, problem := range problems {
		fmt.Fprintf(r.out, "%s %s\n", r.bad.Render("✗"), problem)
	}
	return false, nil
}

func (r *renderer) value(key, val string) error {
	if r.json {
		return r.encode(map[string]string{key: val})
	}
	fmt.Fprintln(r.out, val)
	return nil
}

func (r *renderer) hostResult(res hostcheck.Result) error {
	if r.json {
		return r.encode(res)
	}
	switch {
	case res.Error != "":
		fmt.Fprintf(r.out, "%s %s: %s\n", r.bad.Render("✗"), res.Host, res.Error)
	case res.IP != "":
		fmt.Fprintf(r.out, "%s This hostname is pointing to %s, make sure it is your server IP!\n",
			r.info.Render(res.Host+":"), r.head.Render(res.IP))
	default:
		fmt.Fprintf(r.out, "%s\n", r.faint.Render(res.Host+": not a domain name, nothing to check"))
	}
	return nil
}
