package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/peck/events"
	"github.com/ethereum-optimism/infra/peck/metrics"
	"github.com/ethereum-optimism/infra/peck/types"
)

// Source provides the flattened, already-selected specifications of a run.
// registry.Registry implements it.
type Source interface {
	Specifications() []*types.Specification
}

// SchedulerFault is a panic that escaped the dispatch loop itself rather than
// a specification. It means the harness is broken and always aborts the run.
type SchedulerFault struct {
	Worker int // -1 in serial mode
	Value  any
	Stack  []byte
}

func (f *SchedulerFault) Error() string {
	if f.Worker < 0 {
		return fmt.Sprintf("scheduler fault: %v", f.Value)
	}
	return fmt.Sprintf("scheduler fault in worker %d: %v", f.Worker, f.Value)
}

// Unwrap returns the panic value when it is an error.
func (f *SchedulerFault) Unwrap() error {
	err, _ := f.Value.(error)
	return err
}

// IsSchedulerFault checks if the error is or wraps a SchedulerFault
func IsSchedulerFault(err error) bool {
	var fault *SchedulerFault
	return err != nil && errors.As(err, &fault)
}

// Config holds configuration for creating a new scheduler
type Config struct {
	Log log.Logger
	Bus *events.Bus
}

// Scheduler executes every specification of a run exactly once, either on the
// calling goroutine or on a fixed pool of workers.
//
// Runs cannot be cancelled. The context passed to Run only carries tracing
// information, and per-context timeouts are not enforced.
type Scheduler struct {
	log    log.Logger
	bus    *events.Bus
	tracer trace.Tracer
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.Bus == nil {
		return nil, errors.New("event bus is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Scheduler{
		log:    cfg.Log.New("component", "scheduler"),
		bus:    cfg.Bus,
		tracer: otel.Tracer("peck scheduler"),
	}, nil
}

// Run executes every specification of src. concurrency <= 1 runs serially in
// declaration order; larger values start that many workers, which finish
// specifications in no particular order.
//
// started is broadcast before the first specification and finished after the
// last one. A SchedulerFault is returned, without broadcasting finished, when
// the dispatch loop itself panics.
func (s *Scheduler) Run(ctx context.Context, src Source, concurrency int) (*Result, error) {
	runID := uuid.New().String()
	logger := s.log.New("run_id", runID)

	// Flattened once, before any worker starts.
	specs := src.Specifications()

	mode := ModeSerial
	workers := 1
	if concurrency > 1 {
		mode = ModeConcurrent
		workers = concurrency
	}
	if workers > MaxReasonableConcurrency {
		logger.Warn("Very high concurrency requested", "concurrency", workers,
			"recommendation", "Consider using lower values to avoid resource exhaustion")
	}

	ctx, span := s.tracer.Start(ctx, fmt.Sprintf("run %s", runID), trace.WithAttributes(
		attribute.String("mode", string(mode)),
		attribute.Int("workers", workers),
		attribute.Int("specifications", len(specs)),
	))
	defer span.End()

	logger.Info("Starting run", "mode", mode, "workers", workers, "specifications", len(specs))
	start := time.Now()

	var err error
	if mode == ModeSerial {
		err = s.runSerial(ctx, logger, specs)
	} else {
		err = s.runConcurrent(ctx, logger, specs, workers)
	}
	if err != nil {
		logger.Error("An error bubbled up from the scheduler, this should never happen and is possibly a bug", "error", err)
		metrics.RecordErrorDetails("scheduler_fault", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "scheduler fault")
		return nil, err
	}

	result := NewResult(runID, mode, workers, specs, start, time.Now())
	logger.Info("Run finished",
		"duration", result.Duration,
		"ran", result.Stats.Total,
		"passed", result.Stats.Passed,
		"failed", result.Stats.Failed,
		"errored", result.Stats.Errored,
		"missing", result.Stats.Missing)
	span.SetAttributes(
		attribute.Int("passed", result.Stats.Passed),
		attribute.Int("failed", result.Stats.Failed),
		attribute.Int("errored", result.Stats.Errored),
	)
	return result, nil
}

func (s *Scheduler) runSerial(ctx context.Context, logger log.Logger, specs []*types.Specification) (err error) {
	defer recoverFault(&err, -1)

	s.bus.Started()
	guard := &types.Guard{}
	for _, spec := range specs {
		s.execute(ctx, spec, guard)
	}
	s.bus.Finished()
	logger.Debug("Serial run completed", "specifications", len(specs))
	return nil
}

func (s *Scheduler) runConcurrent(ctx context.Context, logger log.Logger, specs []*types.Specification, workers int) (err error) {
	defer recoverFault(&err, -1)

	s.bus.Started()

	var cursor atomic.Int64
	faults := make([]error, workers)

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer recoverFault(&faults[id], id)
			s.worker(ctx, logger.New("worker", id), specs, &cursor)
		}(id)
	}
	wg.Wait()

	if err := errors.Join(faults...); err != nil {
		return err
	}
	s.bus.Finished()
	return nil
}

// worker claims indices from the shared cursor until it runs past the end.
// Each worker owns its guard, so bodies on different workers never wait on
// each other.
func (s *Scheduler) worker(ctx context.Context, logger log.Logger, specs []*types.Specification, cursor *atomic.Int64) {
	logger.Debug("Worker starting")
	guard := &types.Guard{}
	executed := 0
	for {
		i := cursor.Add(1) - 1
		if i >= int64(len(specs)) {
			logger.Debug("Worker exiting", "executed", executed)
			return
		}
		s.execute(ctx, specs[i], guard)
		executed++
	}
}

func (s *Scheduler) execute(ctx context.Context, spec *types.Specification, guard *types.Guard) {
	_, span := s.tracer.Start(ctx, fmt.Sprintf("specification %s", spec.Label()))
	defer span.End()

	s.bus.StartedSpecification(spec)
	spec.Run(s.bus, guard)
	s.bus.FinishedSpecification(spec)

	outcome := spec.Outcome()
	span.SetAttributes(attribute.String("outcome", string(outcome)))
	if outcome == types.OutcomeErrored {
		span.RecordError(spec.Exception())
		span.SetStatus(codes.Error, "unhandled exception")
	}
}

func recoverFault(err *error, worker int) {
	if r := recover(); r != nil {
		*err = &SchedulerFault{Worker: worker, Value: r, Stack: debug.Stack()}
	}
}
