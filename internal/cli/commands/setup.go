package commands

import (
	"log/slog"

	"github.com/leapstack-labs/texfmt/internal/builtin"
	"github.com/leapstack-labs/texfmt/internal/cli/config"
	"github.com/leapstack-labs/texfmt/internal/cli/output"
	intconfig "github.com/leapstack-labs/texfmt/internal/config"
	"github.com/leapstack-labs/texfmt/internal/host"
	"github.com/leapstack-labs/texfmt/internal/loader"
	"github.com/leapstack-labs/texfmt/internal/registry"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the loaded configuration, logger and renderer.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// BuildRegistry registers the built-in client, then every discovered client
// file in order. Macro definitions go to h.
func (c *CommandContext) BuildRegistry(h host.Writer) (*registry.Registry, error) {
	return Build(c.Cfg, h, c.Logger)
}

// Build creates a registry for cfg. A nil host discards output.
func Build(cfg *config.Config, h host.Writer, logger *slog.Logger) (*registry.Registry, error) {
	r := registry.New(cfg.Options, h, logger)
	if _, err := builtin.Register(r); err != nil {
		return nil, err
	}

	decls, err := loader.New(cfg.ClientsDir, cfg.Clients, logger).Load()
	if err != nil {
		return nil, err
	}
	for _, d := range decls {
		if _, err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// getConfig returns the current configuration, or defaults when none was
// loaded (commands built outside the root command, as in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		ClientsDir:   config.DefaultClientsDir,
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		LogLevel:     config.DefaultLogLevel,
		Options:      intconfig.Default(),
	}
}

// userClients returns the clients registered from files, skipping the
// built-in one unless all is set.
func userClients(r *registry.Registry, all bool) []*registry.Client {
	var out []*registry.Client
	for _, c := range r.Clients() {
		if c.Name == builtin.ClientName && !all {
			continue
		}
		out = append(out, c)
	}
	return out
}
