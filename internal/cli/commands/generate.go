package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/texfmt/internal/host"
	"github.com/leapstack-labs/texfmt/internal/loader"
	"github.com/spf13/cobra"
)

// Header starts every generated file.
const Header = "% Generated by texfmt. Do not edit."

const defaultDebounce = 200 * time.Millisecond

type generateOptions struct {
	Out      string
	Watch    bool
	NoHeader bool
	Debounce time.Duration
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate LaTeX command definitions for all clients",
		Long: `Register the built-in client and every client file, then write the
\newcommand definitions of all public formatters.

With --watch the definitions are regenerated whenever a client file changes.
Errors during a rebuild are logged and the previous output is kept.`,
		Example: `  # Print definitions to stdout
  texfmt generate

  # Write them to a file included by the document
  texfmt generate --out build/texfmt.tex

  # Regenerate on every change
  texfmt generate --out build/texfmt.tex --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Regenerate when client files change")
	cmd.Flags().BoolVar(&opts.NoHeader, "no-header", false, "Omit the generated-file comment")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", defaultDebounce, "Delay before regenerating after a change")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	cmdCtx := NewCommandContext(cmd)

	n, err := generateOnce(cmdCtx, opts)
	if err != nil {
		return err
	}
	if opts.Out != "" {
		cmdCtx.Renderer.Notice("wrote %d definitions to %s", n, opts.Out)
	}
	if !opts.Watch {
		return nil
	}
	if opts.Out == "" {
		return fmt.Errorf("--watch requires --out")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return watchClients(ctx, cmdCtx, opts.Debounce, func() error {
		n, err := generateOnce(cmdCtx, opts)
		if err == nil {
			cmdCtx.Renderer.Notice("regenerated %d definitions", n)
		}
		return err
	})
}

// generateOnce builds a fresh registry and writes its definitions. It
// returns the number of definitions written.
func generateOnce(cmdCtx *CommandContext, opts *generateOptions) (int, error) {
	buf := host.NewBuffer()
	if !opts.NoHeader {
		if err := buf.Write(Header); err != nil {
			return 0, err
		}
	}
	r, err := cmdCtx.BuildRegistry(buf)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, c := range r.Clients() {
		n += len(c.Macros)
	}

	if opts.Out == "" || opts.Out == "-" {
		_, err := fmt.Fprint(cmdCtx.Renderer.Out(), buf.String())
		return n, err
	}
	if dir := filepath.Dir(opts.Out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(opts.Out, []byte(buf.String()), 0600); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", opts.Out, err)
	}
	return n, nil
}

// watchClients watches the clients directory and explicitly listed client
// files, calling rebuild once per burst of changes.
func watchClients(ctx context.Context, cmdCtx *CommandContext, debounce time.Duration, rebuild func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range watchDirs(cmdCtx.Cfg.ClientsDir, cmdCtx.Cfg.Clients) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		cmdCtx.Logger.Info("watching for changes", "dir", dir)
	}

	watchLoop(ctx, watcher, debounce, rebuild, cmdCtx.Logger)
	return nil
}

// watchDirs returns the existing directories holding client files.
func watchDirs(clientsDir string, files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if dir == "" || seen[dir] {
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	add(clientsDir)
	for _, f := range files {
		if !filepath.IsAbs(f) && clientsDir != "" {
			f = filepath.Join(clientsDir, f)
		}
		add(filepath.Dir(f))
	}
	return dirs
}

// watchLoop handles file system events until ctx is done or the watcher
// closes.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, rebuild func() error, logger *slog.Logger) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isClientPath(event.Name) {
				continue
			}
			logger.Debug("client file changed", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			if err := rebuild(); err != nil {
				logger.Error("regeneration failed", "error", err.Error())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "error", err.Error())
		}
	}
}

func isClientPath(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range loader.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
