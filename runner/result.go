package runner

import (
	"fmt"
	"time"

	"github.com/ethereum-optimism/infra/peck/types"
)

// ResultStats tracks the outcome counts of a run
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	Errored   int
	Missing   int
	StartTime time.Time
	EndTime   time.Time
}

// Result is the outcome of a completed run
type Result struct {
	RunID          string
	Mode           Mode
	Workers        int
	Specifications []*types.Specification
	Stats          ResultStats
	Duration       time.Duration
}

// NewResult tallies finished specifications.
func NewResult(runID string, mode Mode, workers int, specs []*types.Specification, start, end time.Time) *Result {
	r := &Result{
		RunID:          runID,
		Mode:           mode,
		Workers:        workers,
		Specifications: specs,
		Stats: ResultStats{
			StartTime: start,
			EndTime:   end,
		},
		Duration: end.Sub(start),
	}
	for _, spec := range specs {
		r.Stats.Total++
		switch spec.Outcome() {
		case types.OutcomePassed:
			r.Stats.Passed++
		case types.OutcomeFailed:
			r.Stats.Failed++
		case types.OutcomeErrored:
			r.Stats.Errored++
		case types.OutcomeMissing:
			r.Stats.Missing++
		}
	}
	return r
}

// Succeeded reports whether no specification failed or errored. Missing
// specifications do not count against a run.
func (r *Result) Succeeded() bool {
	return r.Stats.Failed == 0 && r.Stats.Errored == 0
}

// Outcomes returns the specifications of the run that ended with outcome.
func (r *Result) Outcomes(outcome types.Outcome) []*types.Specification {
	var out []*types.Specification
	for _, spec := range r.Specifications {
		if spec.Outcome() == outcome {
			out = append(out, spec)
		}
	}
	return out
}

func (r *Result) String() string {
	return fmt.Sprintf("run %s (%s, %d workers): %d ran, %d passed, %d failed, %d errored, %d missing in %s",
		r.RunID, r.Mode, r.Workers, r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Errored, r.Stats.Missing,
		r.Duration.Round(time.Millisecond))
}
