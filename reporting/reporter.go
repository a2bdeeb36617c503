// Package reporting contains the observers that render a run for humans.
//
// Every reporter is registered on an events.Bus. Deliveries are serialized by
// the bus; the reporters still lock their own state so the accessors can be
// read from any goroutine.
package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum-optimism/infra/peck/types"
)

// Reporter is the default reporter. It prints one progress character per
// finished specification and a summary at exit.
type Reporter struct {
	counter

	out io.Writer

	// FullBacktrace disables backtrace cleaning.
	FullBacktrace bool
}

// NewReporter creates a reporter writing to out, or to stdout when out is nil.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

func (r *Reporter) Started() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start()
	fmt.Fprintln(r.out, "Started.")
}

func (r *Reporter) FinishedSpecification(spec *types.Specification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, r.count(spec).Progress())
}

func (r *Reporter) AtExit() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ran > 0 {
		fmt.Fprintln(r.out)
	}
	r.writeMissing()
	r.writeExceptions()
	r.writeStats()
}

func (r *Reporter) writeMissing() {
	if len(r.missing) == 0 {
		return
	}
	fmt.Fprint(r.out, "Unimplemented specs:\n\n")
	for _, spec := range r.missing {
		fmt.Fprintf(r.out, "- %s\n", spec.Label())
	}
	fmt.Fprintln(r.out)
}

func (r *Reporter) writeExceptions() {
	if len(r.exceptions) == 0 {
		return
	}
	for _, exc := range r.exceptions {
		backtrace := Backtrace(Frames(exc.Err), r.FullBacktrace)
		fmt.Fprintf(r.out, "\nIn [ %s ]:\n", exc.Specification.Label())
		if len(backtrace) == 0 {
			fmt.Fprintln(r.out, exc.Err)
			continue
		}
		fmt.Fprintf(r.out, "%s : %v\n", backtrace[0], exc.Err)
		for _, line := range backtrace[1:] {
			fmt.Fprintf(r.out, "\t%s\n", line)
		}
	}
	fmt.Fprintln(r.out)
}

func (r *Reporter) writeStats() {
	fmt.Fprintf(r.out, "Finished in %s seconds.\n\n", seconds(r.runtime()))
	fmt.Fprintln(r.out, strings.Join([]string{
		fmt.Sprintf("%d %s", r.ran, pluralize(r.ran, "spec")),
		fmt.Sprintf("%d %s", r.failed, pluralize(r.failed, "failure")),
		fmt.Sprintf("%d %s", r.errored, pluralize(r.errored, "error")),
	}, ", "))
}
