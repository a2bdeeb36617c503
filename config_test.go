package peck

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/peck/flags"
	"github.com/ethereum-optimism/infra/peck/reporting"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "peck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
concurrency: 4
reporter: documentation
select_context: "^Calc"
progress_interval: 5s
log_file:
  path: /tmp/peck.log
  max_backups: 9
`)

	cfg := DefaultConfig()
	require.NoError(t, LoadConfigFile(path, cfg))

	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, reporting.KindDocumentation, cfg.Reporter)
	assert.Equal(t, "^Calc", cfg.SelectContext)
	assert.Equal(t, 5*time.Second, cfg.ProgressInterval)
	assert.Equal(t, "/tmp/peck.log", cfg.LogFile.Path)
	assert.Equal(t, 9, cfg.LogFile.MaxBackups)
	// Untouched keys keep their defaults.
	assert.Equal(t, "peck", cfg.Suite)
	assert.Equal(t, 8080, cfg.HealthzPort)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), cfg))
	assert.Error(t, LoadConfigFile(writeConfigFile(t, "concurrency: [1"), cfg))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "empty reporter defaults", modify: func(c *Config) { c.Reporter = "" }},
		{name: "negative concurrency", modify: func(c *Config) { c.Concurrency = -1 }, wantErr: true},
		{name: "unknown reporter", modify: func(c *Config) { c.Reporter = "junit" }, wantErr: true},
		{name: "bad context pattern", modify: func(c *Config) { c.SelectContext = "(" }, wantErr: true},
		{name: "bad filter", modify: func(c *Config) { c.Filter = "label ==" }, wantErr: true},
		{name: "progress without interval", modify: func(c *Config) {
			c.ShowProgress = true
			c.ProgressInterval = 0
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, reporting.KindDefault, cfg.Reporter)
		})
	}
}

func TestConfig_Selector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SelectContext = "^Calculator"
	cfg.Filter = `description contains "adds"`

	sel, err := cfg.Selector()
	require.NoError(t, err)
	assert.True(t, sel.SelectContext("Calculator"))
	assert.False(t, sel.SelectContext("Parser"))
	assert.True(t, sel.SelectSpecification("Calculator", "adds numbers"))
	assert.False(t, sel.SelectSpecification("Calculator", "divides numbers"))
}

// runWithFlags parses args with the peck flags and builds a Config from them.
func runWithFlags(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var (
		cfg    *Config
		cfgErr error
	)
	app := cli.NewApp()
	app.Flags = flags.Flags
	app.Action = func(ctx *cli.Context) error {
		cfg, cfgErr = NewConfig(ctx, log.NewLogger(log.DiscardHandler()))
		return nil
	}
	require.NoError(t, app.Run(append([]string{"peck"}, args...)))
	return cfg, cfgErr
}

func TestNewConfig(t *testing.T) {
	path := writeConfigFile(t, `
concurrency: 4
reporter: table
select_specification: "adds"
`)

	cfg, err := runWithFlags(t, "--config", path, "--concurrency", "9", "--show-progress")
	require.NoError(t, err)

	// Explicit flags take precedence over the file.
	assert.Equal(t, 9, cfg.Concurrency)
	assert.True(t, cfg.ShowProgress)
	// The file takes precedence over defaults.
	assert.Equal(t, reporting.KindTable, cfg.Reporter)
	assert.Equal(t, "adds", cfg.SelectSpecification)
	assert.Equal(t, 30*time.Second, cfg.ProgressInterval)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestNewConfig_Invalid(t *testing.T) {
	_, err := runWithFlags(t, "--select-context", "(")
	assert.Error(t, err)

	_, err = runWithFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
