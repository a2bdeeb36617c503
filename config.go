package peck

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/peck/flags"
	"github.com/ethereum-optimism/infra/peck/logging"
	"github.com/ethereum-optimism/infra/peck/reporting"
	"github.com/ethereum-optimism/infra/peck/runner"
	"github.com/ethereum-optimism/infra/peck/selection"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

// Config holds the application configuration
type Config struct {
	Concurrency         int                 `yaml:"concurrency"`          // Number of workers, 1 or less runs serially
	SelectContext       string              `yaml:"select_context"`       // Regular expression over context labels
	SelectSpecification string              `yaml:"select_specification"` // Regular expression over specification descriptions
	Filter              string              `yaml:"filter"`               // expr-lang boolean expression over context, description and label
	Reporter            reporting.Kind      `yaml:"reporter"`             // Reporter rendering the run
	FullBacktrace       bool                `yaml:"full_backtrace"`       // Do not clean exception backtraces
	ShowProgress        bool                `yaml:"show_progress"`        // Whether to log periodic progress updates
	ProgressInterval    time.Duration       `yaml:"progress_interval"`    // Interval between progress updates
	List                bool                `yaml:"list"`                 // Print the selected specifications instead of running them
	Suite               string              `yaml:"suite"`                // Suite label of exported metrics
	LogFile             logging.FileConfig  `yaml:"log_file"`
	HealthzPort         int                 `yaml:"healthz_port"`
	Metrics             opmetrics.CLIConfig `yaml:"-"`

	Out io.Writer  `yaml:"-"` // Destination of reporter output
	Log log.Logger `yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Concurrency:      1,
		Reporter:         reporting.KindDefault,
		ProgressInterval: runner.DefaultProgressInterval,
		Suite:            "peck",
		HealthzPort:      8080,
		Out:              os.Stdout,
		Log:              log.Root(),
	}
}

// LoadConfigFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return nil
}

// NewConfig creates a new Config from cli context. The config file, if any,
// is loaded first; flags that were set explicitly take precedence over it.
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Log = log

	if path := ctx.String(flags.ConfigFile.Name); path != "" {
		if err := LoadConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet(flags.Concurrency.Name) {
		cfg.Concurrency = ctx.Int(flags.Concurrency.Name)
	}
	if ctx.IsSet(flags.SelectContext.Name) {
		cfg.SelectContext = ctx.String(flags.SelectContext.Name)
	}
	if ctx.IsSet(flags.SelectSpecification.Name) {
		cfg.SelectSpecification = ctx.String(flags.SelectSpecification.Name)
	}
	if ctx.IsSet(flags.Filter.Name) {
		cfg.Filter = ctx.String(flags.Filter.Name)
	}
	if ctx.IsSet(flags.Reporter.Name) {
		cfg.Reporter = reporting.Kind(ctx.String(flags.Reporter.Name))
	}
	if ctx.IsSet(flags.FullBacktrace.Name) {
		cfg.FullBacktrace = ctx.Bool(flags.FullBacktrace.Name)
	}
	if ctx.IsSet(flags.ShowProgress.Name) {
		cfg.ShowProgress = ctx.Bool(flags.ShowProgress.Name)
	}
	if ctx.IsSet(flags.List.Name) {
		cfg.List = ctx.Bool(flags.List.Name)
	}
	if ctx.IsSet(flags.ProgressInterval.Name) {
		cfg.ProgressInterval = ctx.Duration(flags.ProgressInterval.Name)
	}
	if ctx.IsSet(flags.HealthzPort.Name) {
		cfg.HealthzPort = ctx.Int(flags.HealthzPort.Name)
	}
	if fileCfg := logging.ReadCLIConfig(ctx); fileCfg.Enabled() {
		cfg.LogFile = fileCfg
	}
	cfg.Metrics = opmetrics.ReadCLIConfig(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative, got %d", c.Concurrency)
	}
	kind, err := reporting.ParseKind(string(c.Reporter))
	if err != nil {
		return err
	}
	c.Reporter = kind
	if c.ShowProgress && c.ProgressInterval <= 0 {
		return errors.New("progress interval must be positive when progress is shown")
	}
	if _, err := c.Selector(); err != nil {
		return err
	}
	return nil
}

// Selector compiles the selection patterns and the filter expression.
func (c *Config) Selector() (selection.Selector, error) {
	re, err := selection.NewRegexp(c.SelectContext, c.SelectSpecification)
	if err != nil {
		return nil, fmt.Errorf("invalid selection pattern: %w", err)
	}
	if c.Filter == "" {
		return re, nil
	}
	filter, err := selection.NewExpr(c.Filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return selection.All(re, filter), nil
}
