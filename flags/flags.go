package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "PECK"

// Reporter names accepted by the reporter flag.
var ReporterKinds = []string{"default", "documentation", "table"}

var (
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CONFIG"),
		Usage:   "Path to a YAML configuration file. Flags set explicitly override its values",
	}
	Concurrency = &cli.IntFlag{
		Name:    "concurrency",
		Value:   1,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CONCURRENCY"),
		Usage:   "Number of concurrent workers. 1 or less runs specifications serially in declaration order",
	}
	SelectContext = &cli.StringFlag{
		Name:    "select-context",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SELECT_CONTEXT"),
		Usage:   "Only run contexts whose label matches this regular expression",
	}
	SelectSpecification = &cli.StringFlag{
		Name:    "select-specification",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SELECT_SPECIFICATION"),
		Usage:   "Only run specifications whose description matches this regular expression",
	}
	Filter = &cli.StringFlag{
		Name:    "filter",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FILTER"),
		Usage:   "Boolean expression over context, description and label selecting the specifications to run (eg. 'context startsWith \"Author\"')",
	}
	Reporter = &cli.StringFlag{
		Name:    "reporter",
		Value:   "default",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "REPORTER"),
		Usage:   fmt.Sprintf("Reporter used to render the run. One of %v", ReporterKinds),
		Action: func(_ *cli.Context, value string) error {
			return validateReporter(value)
		},
	}
	FullBacktrace = &cli.BoolFlag{
		Name:    "full-backtrace",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FULL_BACKTRACE"),
		Usage:   "Print exception backtraces without removing engine and runtime frames",
	}
	ShowProgress = &cli.BoolFlag{
		Name:    "show-progress",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SHOW_PROGRESS"),
		Usage:   "Periodically log how many specifications have completed",
	}
	List = &cli.BoolFlag{
		Name:    "list",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LIST"),
		Usage:   "Print the selected specifications as a tree and exit without running them",
	}
	ProgressInterval = &cli.DurationFlag{
		Name:    "progress-interval",
		Value:   30 * time.Second,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "PROGRESS_INTERVAL"),
		Usage:   "Interval between progress updates when show-progress is enabled",
	}
	HealthzPort = &cli.IntFlag{
		Name:    "healthz.port",
		Value:   8080,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_PORT"),
		Usage:   "Port of the healthz server, started together with the metrics server",
	}
	LogFile = &cli.StringFlag{
		Name:    "log.file",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOG_FILE"),
		Usage:   "Also write logs to this file, rotating it by size",
	}
	LogFileMaxSize = &cli.IntFlag{
		Name:    "log.file.max-size",
		Value:   10,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOG_FILE_MAX_SIZE"),
		Usage:   "Size in megabytes at which the log file is rotated",
	}
	LogFileMaxBackups = &cli.IntFlag{
		Name:    "log.file.max-backups",
		Value:   3,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOG_FILE_MAX_BACKUPS"),
		Usage:   "Number of rotated log files to keep",
	}
	LogFileMaxAge = &cli.IntFlag{
		Name:    "log.file.max-age",
		Value:   7,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOG_FILE_MAX_AGE"),
		Usage:   "Days to keep rotated log files",
	}
	LogFileCompress = &cli.BoolFlag{
		Name:    "log.file.compress",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOG_FILE_COMPRESS"),
		Usage:   "Gzip rotated log files",
	}
)

var optionalFlags = []cli.Flag{
	ConfigFile,
	Concurrency,
	SelectContext,
	SelectSpecification,
	Filter,
	Reporter,
	FullBacktrace,
	ShowProgress,
	List,
	ProgressInterval,
	HealthzPort,
	LogFile,
	LogFileMaxSize,
	LogFileMaxBackups,
	LogFileMaxAge,
	LogFileCompress,
}

var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = optionalFlags
}

func validateReporter(value string) error {
	for _, kind := range ReporterKinds {
		if value == kind {
			return nil
		}
	}
	return fmt.Errorf("reporter must be one of %v, got %q", ReporterKinds, value)
}
