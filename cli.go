package peck

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/peck/exitcodes"
	"github.com/ethereum-optimism/infra/peck/flags"
	"github.com/ethereum-optimism/infra/peck/logging"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

// NewApp wraps p in a command line application. Flags are applied to p when
// the app starts, and the exit code follows the outcome of the run.
func NewApp(p *Peck, name, version string) *cli.App {
	app := cli.NewApp()
	app.Name = name
	app.Version = version
	app.Usage = "Run compiled specifications"
	app.Description = fmt.Sprintf("%s runs its specifications serially or on a pool of workers and reports the outcome", name)
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(func(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
		return setup(ctx, p, closeApp)
	})
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), ExitCode(err)))
		}
	}
	return app
}

func setup(ctx *cli.Context, p *Peck, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	logger, closer := logging.NewLogger(oplog.AppOut(ctx), logCfg, logging.ReadCLIConfig(ctx))
	oplog.SetGlobalLogHandler(logger.Handler())
	oplog.SetupDefaults()
	p.addCloser(closer)

	cfg, err := NewConfig(ctx, logger)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return nil, NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	cfg.Out = ctx.App.Writer
	cfg.Log.Debug("Config", "config", cfg)

	if err := p.Configure(cfg); err != nil {
		return nil, err
	}
	p.shutdownCallback = closeApp
	return p, nil
}

// Main runs p as the program named name with the process arguments, and exits
// with the code of the run.
func Main(p *Peck, name, version string) {
	app := NewApp(p, name, version)

	shutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}

	ctx := ctxinterrupt.WithSignalWaiterMain(context.Background())
	err = app.RunContext(ctx, os.Args)
	shutdown()
	if err != nil {
		log.Error("Application failed", "message", err)
		os.Exit(ExitCode(err))
	}
	os.Exit(exitcodes.Success)
}
