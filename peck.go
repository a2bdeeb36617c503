package peck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/peck/events"
	"github.com/ethereum-optimism/infra/peck/metrics"
	"github.com/ethereum-optimism/infra/peck/registry"
	"github.com/ethereum-optimism/infra/peck/reporting"
	"github.com/ethereum-optimism/infra/peck/runner"
	"github.com/ethereum-optimism/infra/peck/service"
	"github.com/ethereum-optimism/infra/peck/types"
	"github.com/ethereum-optimism/infra/peck/ui"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
)

const listWidth = 60

// Peck implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &Peck{}

// Peck owns the contexts of a suite, the observers listening to its runs and
// the configuration they are run with.
type Peck struct {
	mu        sync.Mutex
	config    *Config
	log       log.Logger
	registry  *registry.Registry
	bus       *events.Bus
	scheduler *runner.Scheduler
	metrics   MetricsReporter
	reporter  reporting.Summary
	progress  *runner.ProgressLogger
	observer  *metrics.Observer
	service   *service.Service
	result    *runner.Result
	state     service.RunState
	closers   []io.Closer

	installed atomic.Bool
	exitOnce  sync.Once
	exitErr   error

	running          atomic.Bool
	shutdownCallback context.CancelCauseFunc
}

// New creates a Peck configured with cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*Peck, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}

	p := &Peck{
		registry: registry.NewRegistry(registry.Config{Log: cfg.Log}),
		bus:      events.NewBus(),
		metrics:  NewDefaultMetricsReporter(),
		state:    service.RunIdle,
	}
	if err := p.Configure(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// Describe registers a top level context. See registry.Registry.Describe.
func (p *Peck) Describe(description any, fn func(c *types.Context)) *types.Context {
	return p.registry.Describe(description, fn)
}

// Once registers a hook applied to every context created afterwards.
func (p *Peck) Once(hook func(c *types.Context)) {
	p.registry.Once(hook)
}

func (p *Peck) Registry() *registry.Registry {
	return p.registry
}

// Delegates returns the bus every notification of a run is broadcast on.
// Observers added to it receive the notifications they implement.
func (p *Peck) Delegates() *events.Bus {
	return p.bus
}

// Config returns the configuration currently in use.
func (p *Peck) Config() *Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// Reporter returns the reporter installed for the configured kind.
func (p *Peck) Reporter() reporting.Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reporter
}

// Result returns the result of the last completed run, if any.
func (p *Peck) Result() *runner.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Configure applies cfg: selection, reporter kind, progress logging and the
// metrics observer. Observers added by a previous call are replaced.
func (p *Peck) Configure(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return NewRuntimeError(fmt.Errorf("invalid config: %w", err))
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	sel, err := cfg.Selector()
	if err != nil {
		return NewRuntimeError(err)
	}

	reporter, err := reporting.New(cfg.Reporter, cfg.Out, cfg.FullBacktrace)
	if err != nil {
		return NewRuntimeError(err)
	}
	scheduler, err := runner.NewScheduler(runner.Config{Log: cfg.Log, Bus: p.bus})
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create scheduler: %w", err))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.config = cfg
	p.log = cfg.Log.New("component", "peck")
	p.scheduler = scheduler
	p.registry.SetSelector(sel)

	if p.reporter != nil {
		p.bus.Remove(p.reporter)
	}
	p.reporter = reporter
	if p.installed.Load() {
		if _, err := p.bus.Add(reporter); err != nil {
			return NewRuntimeError(err)
		}
	}

	if p.progress != nil {
		p.progress.Stop()
		p.bus.Remove(p.progress)
		p.progress = nil
	}
	if cfg.ShowProgress {
		p.progress = runner.NewProgressLogger(cfg.Log, cfg.ProgressInterval, p.registry)
		if _, err := p.bus.Add(p.progress); err != nil {
			return NewRuntimeError(err)
		}
	}

	if p.observer != nil {
		p.bus.Remove(p.observer)
		p.observer = nil
	}
	if cfg.Metrics.Enabled {
		p.observer = metrics.NewObserver(cfg.Suite)
		if _, err := p.bus.Add(p.observer); err != nil {
			return NewRuntimeError(err)
		}
	}

	p.log.Debug("Configured",
		"concurrency", cfg.Concurrency,
		"reporter", cfg.Reporter,
		"showProgress", cfg.ShowProgress,
		"metrics", cfg.Metrics.Enabled)
	return nil
}

// Run executes every selected specification once. Observers receive started,
// the per-specification notifications and finished, but not at_exit.
// A scheduler fault is returned as a RuntimeError.
func (p *Peck) Run(ctx context.Context) (*runner.Result, error) {
	p.mu.Lock()
	cfg, scheduler, logger := p.config, p.scheduler, p.log
	p.state = service.RunInProgress
	p.mu.Unlock()

	result, err := scheduler.Run(ctx, p.registry, cfg.Concurrency)
	if err != nil {
		p.setState(service.RunFinished)
		logger.Error("Run aborted", "error", err)
		return nil, NewRuntimeError(err)
	}
	p.metrics.ReportResults(cfg.Suite, result)

	p.mu.Lock()
	p.result = result
	p.state = service.RunFinished
	p.mu.Unlock()
	return result, nil
}

func (p *Peck) setState(state service.RunState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// Status reports the run state served on /healthz.
func (p *Peck) Status() service.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := service.Status{Run: p.state}
	if p.result != nil {
		st.Result = p.result.String()
	}
	return st
}

// RunAtExit installs the configured reporter and arranges for Exit to run the
// suite. It reports whether this call installed it; later calls are no-ops.
func (p *Peck) RunAtExit() bool {
	if !p.installed.CompareAndSwap(false, true) {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.bus.Contains(p.reporter) {
		if _, err := p.bus.Add(p.reporter); err != nil {
			p.log.Error("Failed to install reporter", "error", err)
		}
	}
	return true
}

// Exit performs the hook installed by RunAtExit: it runs the suite, broadcasts
// at_exit and returns the process exit code. The hook runs at most once; later
// calls return the same code. Without RunAtExit it does nothing and returns 0.
func (p *Peck) Exit() int {
	return ExitCode(p.exit(context.Background()))
}

func (p *Peck) exit(ctx context.Context) error {
	if !p.installed.Load() {
		return nil
	}
	p.exitOnce.Do(func() {
		p.exitErr = p.runAndReport(ctx)
	})
	return p.exitErr
}

func (p *Peck) runAndReport(ctx context.Context) error {
	result, err := p.Run(ctx)
	if err != nil {
		return err
	}
	p.bus.AtExit()
	if !result.Succeeded() {
		return NewTestFailureError(result.String())
	}
	return nil
}

// Start runs the suite and reports it. It implements the cliapp.Lifecycle
// interface, and asks the app to shut down once the run succeeded.
func (p *Peck) Start(ctx context.Context) error {
	p.running.Store(true)

	cfg := p.Config()
	if cfg.Metrics.Enabled {
		p.service = service.New(service.Config{
			Log:         cfg.Log,
			HealthzPort: cfg.HealthzPort,
			MetricsHost: cfg.Metrics.ListenAddr,
			MetricsPort: cfg.Metrics.ListenPort,
			Status:      p.Status,
		})
		p.service.Start(ctx)
	}

	if cfg.List {
		p.List(cfg.Out)
	} else {
		p.RunAtExit()
		if err := p.exit(ctx); err != nil {
			return err
		}
	}

	if p.shutdownCallback != nil {
		go p.shutdownCallback(nil)
	}
	return nil
}

// List writes the selected specifications to w as a tree, without running them.
func (p *Peck) List(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	specs := p.registry.Specifications()
	pending := 0
	for _, spec := range specs {
		if !spec.HasBody() {
			pending++
		}
	}

	fmt.Fprint(w, ui.BuildBoxHeader("Specifications", listWidth))
	fmt.Fprint(w, ui.BuildBoxLine(fmt.Sprintf("%d selected, %d pending", len(specs), pending), listWidth))
	fmt.Fprint(w, ui.BuildBoxFooter(listWidth))
	fmt.Fprint(w, ui.RenderTree(ui.SpecificationNodes(p.registry.Contexts(), specs)))
}

// Stop implements the cliapp.Lifecycle interface.
func (p *Peck) Stop(ctx context.Context) error {
	if !p.running.CompareAndSwap(true, false) {
		return nil
	}
	if p.service != nil {
		p.service.Shutdown()
	}
	p.mu.Lock()
	progress, closers := p.progress, p.closers
	p.closers = nil
	p.mu.Unlock()
	if progress != nil {
		progress.Stop()
	}

	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	p.log.Info("Peck stopped")
	return errors.Join(errs...)
}

// Stopped implements the cliapp.Lifecycle interface.
func (p *Peck) Stopped() bool {
	return !p.running.Load()
}

// addCloser registers a resource released by Stop.
func (p *Peck) addCloser(c io.Closer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closers = append(p.closers, c)
}
