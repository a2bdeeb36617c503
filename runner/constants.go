package runner

import "time"

// Mode names how a run distributes its specifications.
type Mode string

const (
	ModeSerial     Mode = "serial"
	ModeConcurrent Mode = "concurrent"
)

const (
	// MaxReasonableConcurrency is the worker count above which a warning is logged
	MaxReasonableConcurrency = 32

	// DefaultProgressInterval is the default period of progress log updates
	DefaultProgressInterval = 30 * time.Second

	// maxShownRunning limits the specifications listed in a progress update
	maxShownRunning = 3
)
