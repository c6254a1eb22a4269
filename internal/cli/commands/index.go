package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/texfmt/internal/cli/output"
	"github.com/leapstack-labs/texfmt/internal/state"
	"github.com/spf13/cobra"
)

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild or search the formatter catalog",
		Long: `Register all clients and store their formatters in the SQLite catalog
at state_path (--state). Editors and scripts can read the catalog without
loading client files.

With --search, query the existing catalog instead of rebuilding it.`,
		Example: `  # Rebuild the catalog
  texfmt index

  # Find formatters whose key or command starts with "cite"
  texfmt index --search cite`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if search != "" {
				return runIndexSearch(cmd, search)
			}
			return runIndex(cmd)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Search the catalog by key or command prefix")
	return cmd
}

func openCatalog(path string) (*state.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store := state.NewSQLiteStore()
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func runIndex(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r, err := cmdCtx.BuildRegistry(nil)
	if err != nil {
		return err
	}

	store, err := openCatalog(cmdCtx.Cfg.StatePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := state.IndexRegistry(store, r)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("catalog rebuilt", "path", cmdCtx.Cfg.StatePath, "formatters", n)
	cmdCtx.Renderer.Notice("indexed %d formatters from %d clients into %s", n, r.Len(), cmdCtx.Cfg.StatePath)
	return nil
}

func runIndexSearch(cmd *cobra.Command, prefix string) error {
	cmdCtx := NewCommandContext(cmd)
	store, err := openCatalog(cmdCtx.Cfg.StatePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	found, err := store.SearchFormatters(prefix)
	if err != nil {
		return err
	}

	rend := cmdCtx.Renderer
	if rend.EffectiveMode() == output.ModeTable {
		rows := make([][]string, 0, len(found))
		for _, f := range found {
			rows = append(rows, []string{f.Ref(), `\` + f.Name, f.Comment})
		}
		rend.Table([]string{"REF", "COMMAND", "COMMENT"}, rows)
		return nil
	}
	if found == nil {
		found = []*state.FormatterRecord{}
	}
	return rend.Data(found)
}
