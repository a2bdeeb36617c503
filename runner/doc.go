// Package runner executes the specifications of a registry.
//
// The main components are:
//   - Scheduler: runs every specification exactly once, serially or on a fixed worker pool
//   - Result: the outcome counts and timings of a completed run
//   - ProgressLogger: an observer that periodically logs how far a run has progressed
//
// In serial mode specifications run on the calling goroutine in declaration
// order. In concurrent mode workers claim specifications through a shared
// atomic cursor, so each one runs exactly once but completion order across
// workers, and therefore the order of per-specification notifications, is not
// defined. A specification's own started notification always precedes its
// finished notification, and the run-level started and finished notifications
// bound all per-specification activity.
package runner
