package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "texfmt.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("clients-dir", "", "")
	flags.StringSlice("client", nil, "")
	flags.String("state", "", "")
	flags.Bool("strict", false, "")
	flags.Bool("color", true, "")
	flags.String("default-color", "", "")
	flags.String("log-level", "", "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "")
	root := filepath.Dir(cfgPath)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, DefaultClientsDir), cfg.ClientsDir)
	assert.Equal(t, filepath.Join(root, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	require.NotNil(t, cfg.Options)
	assert.Equal(t, "blue", cfg.Options.DefaultColor)
	assert.True(t, cfg.Options.Selfdoc)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, `clients_dir: tex/clients
clients: [base.star, paper.yaml]
output: json
options:
  default_color: red
  list_last_sep: " & "
  strict: true
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "tex", "clients"), cfg.ClientsDir)
	assert.Equal(t, []string{"base.star", "paper.yaml"}, cfg.Clients)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "red", cfg.Options.DefaultColor)
	assert.Equal(t, " & ", cfg.Options.ListLastSep)
	assert.Equal(t, ", ", cfg.Options.ListSep, "unset options keep their defaults")
	assert.True(t, cfg.Options.Strict)
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "options:\n  default_color: red\noutput: json\n")

	t.Setenv("TEXFMT_OPTIONS__DEFAULT_COLOR", "green")
	t.Setenv("TEXFMT_OUTPUT", "yaml")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "green", cfg.Options.DefaultColor)
	assert.Equal(t, "yaml", cfg.OutputFormat)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "options:\n  default_color: red\n  color: true\n")
	t.Setenv("TEXFMT_OPTIONS__DEFAULT_COLOR", "green")

	flags := testFlags()
	require.NoError(t, flags.Set("default-color", "teal"))
	require.NoError(t, flags.Set("color", "false"))
	require.NoError(t, flags.Set("strict", "true"))
	require.NoError(t, flags.Set("client", "a.star,b.yaml"))
	require.NoError(t, flags.Set("state", "out/cat.db"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "teal", cfg.Options.DefaultColor, "flag value should override config file and env var")
	assert.False(t, cfg.Options.Color)
	assert.True(t, cfg.Options.Strict)
	assert.Equal(t, []string{"a.star", "b.yaml"}, cfg.Clients)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "out", "cat.db"), cfg.StatePath, "flag paths are relative to the working directory")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "")
	t.Setenv("TEXFMT_OPTIONS__DEFAULT_COLOR", "green")

	cfg, err := LoadConfig(cfgPath, testFlags())
	require.NoError(t, err)
	assert.Equal(t, "green", cfg.Options.DefaultColor, "env var should be used when flag is not set")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"output", "output: xml\n", "invalid output format"},
		{"log level", "log_level: loud\n", "invalid log level"},
		{"default color", "options:\n  default_color: default\n", "default_color"},
		{"yaml", "options: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "clients_dir", envKey("TEXFMT_CLIENTS_DIR"))
	assert.Equal(t, "options.list_sep", envKey("TEXFMT_OPTIONS__LIST_SEP"))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "error", true)
	require.NoError(t, err)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), "hello", "verbose forces debug level")

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}

func TestLogger_ErrorsRenderAsText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", false)
	require.NoError(t, err)

	logger.Warn("degraded", "error", errors.Wrap(errors.New("inner"), "outer"))
	assert.Contains(t, buf.String(), `error="outer: inner"`)
	assert.NotContains(t, buf.String(), "stack trace")
}
