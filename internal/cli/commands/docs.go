package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type docsOptions struct {
	Samples map[string]string
	All     bool
}

// NewDocsCommand creates the docs command.
func NewDocsCommand() *cobra.Command {
	opts := &docsOptions{}
	cmd := &cobra.Command{
		Use:   "docs [ref...]",
		Short: "Print the invocation syntax of generated commands",
		Long: `Print one docstring per public formatter: its comment as LaTeX comment
lines followed by the command with its argument names.

Argument names can be replaced by sample values with --sample name=value.`,
		Example: `  # Document every client
  texfmt docs

  # Document one formatter with sample arguments
  texfmt docs paper:cite --sample key=knuth84`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(cmd, args, opts)
		},
	}

	cmd.Flags().StringToStringVar(&opts.Samples, "sample", nil, "Sample value for an argument (name=value)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Include the built-in client")

	return cmd
}

func runDocs(cmd *cobra.Command, refs []string, opts *docsOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r, err := cmdCtx.BuildRegistry(nil)
	if err != nil {
		return err
	}
	o := r.Options()
	var samples map[string]string
	if len(opts.Samples) > 0 {
		samples = opts.Samples
	}

	if len(refs) > 0 {
		for _, ref := range refs {
			f, err := r.Lookup(ref)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Println(f.Docstring(o, samples))
		}
		return nil
	}

	if !o.Selfdoc {
		cmdCtx.Renderer.Notice("self-documentation is disabled; enable options.selfdoc to print docstrings")
		return nil
	}

	var sections []string
	for _, c := range userClients(r, opts.All) {
		var docs []string
		for _, f := range c.Formatters() {
			if f.IsHidden() {
				continue
			}
			docs = append(docs, f.Docstring(o, samples))
		}
		if len(docs) == 0 {
			continue
		}
		sections = append(sections, fmt.Sprintf("%% --- %s ---\n%s", c.Name, strings.Join(docs, "\n")))
	}
	if len(sections) > 0 {
		cmdCtx.Renderer.Println(strings.Join(sections, "\n\n"))
	}
	return nil
}
