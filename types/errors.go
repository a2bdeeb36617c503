package types

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrReentrantBody is raised when a body starts while another body is already
// running on the same worker.
var ErrReentrantBody = errors.New("specification body entered while another body is running on this worker")

// AssertionError is the recognized "assertion failed" signal. It is recorded on
// the specification's error list instead of being treated as an exception.
type AssertionError struct {
	Description string
}

func (e *AssertionError) Error() string {
	if e.Description == "" {
		return "assertion failed"
	}
	return e.Description
}

// NewAssertionError creates a new AssertionError
func NewAssertionError(format string, args ...any) *AssertionError {
	return &AssertionError{Description: fmt.Sprintf(format, args...)}
}

// IsAssertionError checks if the error is or wraps an AssertionError
func IsAssertionError(err error) bool {
	var assertErr *AssertionError
	return err != nil && errors.As(err, &assertErr)
}

// PanicError is an unhandled value that escaped a body or callback, together
// with the call stack at the point it was recovered.
type PanicError struct {
	Value  any
	Frames []runtime.Frame
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// CallerFrames captures the stack of the calling goroutine, skipping skip
// frames above the caller.
func CallerFrames(skip int) []runtime.Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []runtime.Frame
	for {
		frame, more := frames.Next()
		out = append(out, frame)
		if !more {
			break
		}
	}
	return out
}
