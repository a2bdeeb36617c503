package reporting

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/peck/types"
)

func TestBacktrace(t *testing.T) {
	frames := []runtime.Frame{
		{Function: "runtime.gopanic", File: "/usr/local/go/src/runtime/panic.go", Line: 770},
		{Function: modulePath + "/types.(*Specification).Run", File: "/src/peck/types/specification.go", Line: 10},
		{Function: "example.com/app.helper", File: "/app/helper.go", Line: 3},
		{Function: modulePath + "/reporting.TestSomething.func1", File: "/src/peck/reporting/some_test.go", Line: 4},
		{Function: modulePath + "/cmd/peck.suites.func2", File: "/src/peck/cmd/peck/suites.go", Line: 5},
		{Function: modulePath + ".(*Peck).Run", File: "/src/peck/peck.go", Line: 6},
	}

	assert.Equal(t, []string{
		"/app/helper.go:3",
		"/src/peck/reporting/some_test.go:4",
		"/src/peck/cmd/peck/suites.go:5",
	}, Backtrace(frames, false))

	assert.Len(t, Backtrace(frames, true), len(frames))
}

func TestBacktrace_FallsBackToFullTrace(t *testing.T) {
	frames := []runtime.Frame{
		{Function: "runtime.gopanic", File: "/usr/local/go/src/runtime/panic.go", Line: 770},
		{Function: modulePath + "/runner.(*Scheduler).execute", File: "/src/peck/runner/scheduler.go", Line: 1},
	}
	assert.Equal(t, []string{
		"/usr/local/go/src/runtime/panic.go:770",
		"/src/peck/runner/scheduler.go:1",
	}, Backtrace(frames, false))
}

func TestFrames(t *testing.T) {
	frames := []runtime.Frame{{Function: "f", File: "/f.go", Line: 1}}
	assert.Equal(t, frames, Frames(&types.PanicError{Value: "x", Frames: frames}))
	assert.Nil(t, Frames(errors.New("plain")))
}
