package types

import (
	"time"
)

// Outcome is the terminal classification of a finished specification.
type Outcome string

const (
	OutcomeUnknown Outcome = ""
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeErrored Outcome = "errored"
	OutcomeMissing Outcome = "missing"
)

// Progress returns the single character used by the default reporter.
func (o Outcome) Progress() string {
	switch o {
	case OutcomePassed:
		return "."
	case OutcomeFailed:
		return "f"
	case OutcomeErrored:
		return "e"
	case OutcomeMissing:
		return "m"
	}
	return "?"
}

// Delegate receives the notifications a specification raises while it runs.
type Delegate interface {
	ReceivedMissing(spec *Specification)
	ReceivedException(spec *Specification, err error)
}

type discardDelegate struct{}

func (discardDelegate) ReceivedMissing(*Specification)          {}
func (discardDelegate) ReceivedException(*Specification, error) {}

// Expectation is one recorded assertion attempt.
type Expectation struct {
	Description string
}

// Specification is a single executable test case and its recorded outcome.
//
// A specification is only mutated by its own Run. The scheduler guarantees
// that Run is invoked by exactly one worker.
type Specification struct {
	context     *Context
	description string
	body        Body
	before      []Callback
	after       []Callback

	expectations []Expectation
	errors       []error
	exception    error
	finished     bool
	duration     time.Duration
}

func newSpecification(ctx *Context, description string, body Body) *Specification {
	return &Specification{
		context:     ctx,
		description: description,
		body:        body,
		before:      append([]Callback(nil), ctx.before...),
		after:       append([]Callback(nil), ctx.after...),
	}
}

// Context returns the owning context.
func (s *Specification) Context() *Context { return s.context }

// Description returns the description passed to It.
func (s *Specification) Description() string { return s.description }

// Label is the context label followed by the description.
func (s *Specification) Label() string {
	if s.context == nil {
		return s.description
	}
	return s.context.Label() + " " + s.description
}

// HasBody reports whether an executable body was supplied.
func (s *Specification) HasBody() bool { return s.body != nil }

// Expectations returns the recorded assertion attempts.
func (s *Specification) Expectations() []Expectation {
	return append([]Expectation(nil), s.expectations...)
}

// Errors returns the recorded assertion failures.
func (s *Specification) Errors() []error {
	return append([]error(nil), s.errors...)
}

// Exception returns the unhandled exception captured during Run, if any.
func (s *Specification) Exception() error { return s.exception }

// Finished reports whether Run has completed.
func (s *Specification) Finished() bool { return s.finished }

// Duration is the wall-clock time spent in Run.
func (s *Specification) Duration() time.Duration { return s.duration }

// Outcome classifies a finished specification. It returns OutcomeUnknown
// while the specification has not finished. A recorded failure counts as
// failed even when no attempt was recorded before it.
func (s *Specification) Outcome() Outcome {
	switch {
	case !s.finished:
		return OutcomeUnknown
	case s.exception != nil:
		return OutcomeErrored
	case s.body == nil:
		return OutcomeMissing
	case len(s.errors) > 0:
		return OutcomeFailed
	case len(s.expectations) == 0:
		return OutcomeMissing
	default:
		return OutcomePassed
	}
}

func (s *Specification) Missing() bool { return s.Outcome() == OutcomeMissing }
func (s *Specification) Errored() bool { return s.Outcome() == OutcomeErrored }
func (s *Specification) Passed() bool  { return s.Outcome() == OutcomePassed }
func (s *Specification) Failed() bool  { return s.Outcome() == OutcomeFailed }

// Run executes the before chain, the body and the after chain. Assertion
// failures are recorded; any other panic is captured as the exception, is
// reported to d, and ends the specification immediately.
//
// guard is the private guard of the calling worker; nil runs the body unguarded.
// A nil d discards the notifications.
func (s *Specification) Run(d Delegate, guard *Guard) {
	if d == nil {
		d = discardDelegate{}
	}
	start := time.Now()
	defer func() {
		s.duration = time.Since(start)
		s.finished = true
	}()

	if s.body == nil {
		d.ReceivedMissing(s)
		return
	}

	t := newT(s)

	failed, exc := s.evaluate(func() {
		for _, cb := range s.before {
			cb(t)
		}
	})
	if exc != nil {
		s.raise(d, exc)
		return
	}

	if !failed {
		_, exc = s.evaluate(func() {
			guard.Do(func() { s.body(t) })
		})
		if exc != nil {
			s.raise(d, exc)
			return
		}
		if len(s.expectations) == 0 && len(s.errors) == 0 {
			d.ReceivedMissing(s)
		}
	}

	_, exc = s.evaluate(func() {
		for _, cb := range s.after {
			cb(t)
		}
	})
	if exc != nil {
		s.raise(d, exc)
	}
}

// evaluate runs fn, recording a recognized assertion failure and returning
// any other recovered value as an exception.
func (s *Specification) evaluate(fn func()) (failed bool, exception error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); ok && IsAssertionError(err) {
			s.errors = append(s.errors, err)
			failed = true
			return
		}
		exception = &PanicError{Value: r, Frames: CallerFrames(0)}
	}()
	fn()
	return false, nil
}

func (s *Specification) raise(d Delegate, exc error) {
	s.exception = exc
	d.ReceivedException(s, exc)
}

// Guard serializes body evaluation on a single worker. Each worker owns its
// own guard, so guards never contend across workers.
type Guard struct {
	held bool
}

// Do runs fn while holding the guard. Entering a held guard panics with
// ErrReentrantBody.
func (g *Guard) Do(fn func()) {
	if g == nil {
		fn()
		return
	}
	if g.held {
		panic(ErrReentrantBody)
	}
	g.held = true
	defer func() { g.held = false }()
	fn()
}
