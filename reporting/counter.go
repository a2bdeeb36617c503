package reporting

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/peck/types"
)

// Exception pairs a specification with the exception it raised.
type Exception struct {
	Specification *types.Specification
	Err           error
}

// counter aggregates the notifications shared by every reporter.
type counter struct {
	mu sync.Mutex

	ran     int
	passed  int
	failed  int
	errored int

	startedAt  time.Time
	finishedAt time.Time

	missing    []*types.Specification
	exceptions []Exception
}

func (c *counter) start() {
	c.startedAt = time.Now()
	c.finishedAt = c.startedAt
}

func (c *counter) finish() {
	c.finishedAt = time.Now()
}

// count tallies a finished specification and returns its outcome.
func (c *counter) count(spec *types.Specification) types.Outcome {
	outcome := spec.Outcome()
	c.ran++
	switch outcome {
	case types.OutcomeErrored:
		c.errored++
	case types.OutcomePassed:
		c.passed++
	case types.OutcomeFailed:
		c.failed++
	}
	return outcome
}

func (c *counter) Finished() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish()
}

func (c *counter) ReceivedMissing(spec *types.Specification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missing = append(c.missing, spec)
}

func (c *counter) ReceivedException(spec *types.Specification, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exceptions = append(c.exceptions, Exception{Specification: spec, Err: err})
}

func (c *counter) runtime() time.Duration {
	return c.finishedAt.Sub(c.startedAt)
}

// Counts is a snapshot of a reporter's tallies.
type Counts struct {
	Ran     int
	Passed  int
	Failed  int
	Errored int
	Missing int
}

func (c *counter) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Counts{
		Ran:     c.ran,
		Passed:  c.passed,
		Failed:  c.failed,
		Errored: c.errored,
		Missing: len(c.missing),
	}
}

// MissingLabels returns the labels of specifications reported as missing.
func (c *counter) MissingLabels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	labels := make([]string, 0, len(c.missing))
	for _, spec := range c.missing {
		labels = append(labels, spec.Label())
	}
	return labels
}

// Exceptions returns the captured exceptions in the order they were received.
func (c *counter) Exceptions() []Exception {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Exception(nil), c.exceptions...)
}

// Runtime is the wall-clock time between started and finished.
func (c *counter) Runtime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runtime()
}

func pluralize(count int, stem string) string {
	if count == 1 {
		return stem
	}
	return stem + "s"
}

// seconds renders d in seconds rounded to two decimal places.
func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}
