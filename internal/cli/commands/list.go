package commands

import (
	"strings"

	"github.com/leapstack-labs/texfmt/internal/builtin"
	"github.com/leapstack-labs/texfmt/internal/cli/output"
	"github.com/leapstack-labs/texfmt/internal/registry"
	"github.com/leapstack-labs/texfmt/internal/state"
	"github.com/spf13/cobra"
)

type listOptions struct {
	All   bool
	Local bool
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered formatters",
		Long: `List the formatters of every client with their command names,
arguments and colors.

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: JSON

Use --output to override: auto, table, json, yaml`,
		Example: `  # List all formatters
  texfmt list

  # Include the built-in client and local formatters, as YAML
  texfmt list --all --local -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Include the built-in client")
	cmd.Flags().BoolVar(&opts.Local, "local", false, "Include local formatters")

	return cmd
}

// listEntry is one client in structured list output.
type listEntry struct {
	Client     *state.ClientRecord      `json:"client" yaml:"client"`
	Formatters []*state.FormatterRecord `json:"formatters" yaml:"formatters"`
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r, err := cmdCtx.BuildRegistry(nil)
	if err != nil {
		return err
	}

	entries, err := collectEntries(r, opts)
	if err != nil {
		return err
	}

	rend := cmdCtx.Renderer
	switch rend.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return rend.Data(entries)
	default:
		listTable(rend, entries)
		return nil
	}
}

func collectEntries(r *registry.Registry, opts *listOptions) ([]listEntry, error) {
	entries := []listEntry{}
	for i, c := range r.Clients() {
		if !opts.All && c.Name == builtin.ClientName {
			continue
		}
		rec, formatters, err := state.Snapshot(c, i, r.Options())
		if err != nil {
			return nil, err
		}
		if !opts.Local {
			formatters = publicOnly(formatters)
		}
		entries = append(entries, listEntry{Client: rec, Formatters: formatters})
	}
	return entries, nil
}

func listTable(rend *output.Renderer, entries []listEntry) {
	var rows [][]string
	for _, e := range entries {
		for _, f := range e.Formatters {
			command := `\` + f.Name
			if f.Macro == "" {
				command = "-"
			}
			ref := f.Ref()
			if f.Home != f.Client {
				ref += " (from " + f.Home + ")"
			}
			rows = append(rows, []string{ref, command, f.Kind, strings.Join(f.Args, ", "), f.Color})
		}
	}
	rend.Table([]string{"REF", "COMMAND", "KIND", "ARGS", "COLOR"}, rows)
}

func publicOnly(in []*state.FormatterRecord) []*state.FormatterRecord {
	out := make([]*state.FormatterRecord, 0, len(in))
	for _, f := range in {
		if !f.Local {
			out = append(out, f)
		}
	}
	return out
}
