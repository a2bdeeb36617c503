// Package exitcodes defines the standard exit codes used by peck binaries.
package exitcodes

// Exit code constants used by peck
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when no specification failed or errored
// * TestFailure (1): Used when one or more specifications failed or errored
// * RuntimeErr (2): Used for runtime errors such as configuration errors or scheduler faults
const (
	Success     = 0 // All specifications passed or are missing
	TestFailure = 1 // Failed or errored specifications
	RuntimeErr  = 2 // Runtime errors
)
