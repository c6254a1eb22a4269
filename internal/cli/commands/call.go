package commands

import (
	"github.com/spf13/cobra"
)

// NewCallCommand creates the call command.
func NewCallCommand() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "call <ref> [values...]",
		Short: "Run a formatter the way a generated command would",
		Long: `Dispatch a formatter with values in command slot order: when the
command has an optional argument, the options string comes first.

The result is printed as the document would receive it, colored unless
coloring is disabled or the color resolves to "nocolor".`,
		Example: `  # \pListJoin[sep=;]{a,b,c}
  texfmt call paper:list.join "sep=;" "a,b,c"

  # Without color
  texfmt call range --token nocolor "" 5-ff`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			r, err := cmdCtx.BuildRegistry(nil)
			if err != nil {
				return err
			}
			out, err := r.Dispatch(args[0], token, args[1:]...)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "default", "Color token passed by the command")
	return cmd
}
