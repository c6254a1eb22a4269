// Package config provides configuration management for the texfmt CLI.
//
// It layers CLI settings (client discovery, catalog path, output) around
// the engine options of internal/config, which live under the "options"
// key of texfmt.yaml.
package config

import (
	intconfig "github.com/leapstack-labs/texfmt/internal/config"
)

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string             `koanf:"-"`
	ClientsDir   string             `koanf:"clients_dir"`
	Clients      []string           `koanf:"clients"` // loaded first, in this order
	StatePath    string             `koanf:"state_path"`
	Verbose      bool               `koanf:"verbose"`
	OutputFormat string             `koanf:"output"`
	LogLevel     string             `koanf:"log_level"`
	Options      *intconfig.Options `koanf:"options"`
}

// Default configuration values.
const (
	DefaultClientsDir = "clients"
	DefaultStateFile  = ".texfmt/catalog.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=table, non-TTY=json
	DefaultLogLevel   = "warn"
	EnvPrefix         = "TEXFMT_"
)

// Output formats accepted by --output.
var OutputFormats = []string{"auto", "table", "json", "yaml"}
