// Package logging builds the process logger and its optional rotating log file.
package logging

import (
	"io"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ethereum-optimism/infra/peck/flags"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

// Default rotation constants
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// FileConfig describes the rotating log file. Rotation parameters follow
// lumberjack semantics; zero values select the defaults.
type FileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ReadCLIConfig reads the log file flags.
func ReadCLIConfig(ctx *cli.Context) FileConfig {
	return FileConfig{
		Path:       ctx.String(flags.LogFile.Name),
		MaxSizeMB:  ctx.Int(flags.LogFileMaxSize.Name),
		MaxBackups: ctx.Int(flags.LogFileMaxBackups.Name),
		MaxAgeDays: ctx.Int(flags.LogFileMaxAge.Name),
		Compress:   ctx.Bool(flags.LogFileCompress.Name),
	}
}

// Enabled reports whether a log file was configured.
func (c FileConfig) Enabled() bool {
	return c.Path != ""
}

// Writer returns the rotating writer, or nil when no file is configured.
func (c FileConfig) Writer() io.WriteCloser {
	if !c.Enabled() {
		return nil
	}
	return &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger creates a logger writing to out and, when file is enabled, to the
// rotating log file as well. The returned closer releases the file.
func NewLogger(out io.Writer, cfg oplog.CLIConfig, file FileConfig) (log.Logger, io.Closer) {
	w := file.Writer()
	if w == nil {
		return oplog.NewLogger(out, cfg), nopCloser{}
	}
	return oplog.NewLogger(io.MultiWriter(out, w), cfg), w
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
