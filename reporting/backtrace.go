package reporting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ethereum-optimism/infra/peck/types"
)

const modulePath = "github.com/ethereum-optimism/infra/peck"

// Packages whose frames are hidden from cleaned backtraces. The module root
// package is the empty entry.
var enginePackages = []string{"", "/types", "/events", "/runner", "/registry", "/expect", "/reporting", "/selection"}

// Frames returns the call stack recorded with err, if any.
func Frames(err error) []runtime.Frame {
	var panicErr *types.PanicError
	if errors.As(err, &panicErr) {
		return panicErr.Frames
	}
	return nil
}

// Backtrace formats frames as file:line locations. Unless full is set, frames
// of the Go runtime and of the engine itself are dropped; if that leaves
// nothing the full trace is returned instead.
func Backtrace(frames []runtime.Frame, full bool) []string {
	all := make([]string, 0, len(frames))
	var cleaned []string
	for _, f := range frames {
		line := frameString(f)
		all = append(all, line)
		if !isEngineFrame(f) {
			cleaned = append(cleaned, line)
		}
	}
	if full || len(cleaned) == 0 {
		return all
	}
	return cleaned
}

func isEngineFrame(f runtime.Frame) bool {
	if strings.HasSuffix(f.File, "_test.go") {
		return false
	}
	if strings.HasPrefix(f.Function, "runtime.") {
		return true
	}
	for _, pkg := range enginePackages {
		if strings.HasPrefix(f.Function, modulePath+pkg+".") {
			return true
		}
	}
	return false
}

func frameString(f runtime.Frame) string {
	file := f.File
	if wd, err := os.Getwd(); err == nil && file != "" {
		if rel, err := filepath.Rel(wd, file); err == nil && !strings.HasPrefix(rel, "..") {
			file = rel
		}
	}
	return fmt.Sprintf("%s:%d", file, f.Line)
}
