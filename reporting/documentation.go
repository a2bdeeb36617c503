package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ethereum-optimism/infra/peck/types"
)

// DocumentationReporter prints every specification under its context label
// and a numbered list of exceptions at exit.
type DocumentationReporter struct {
	counter

	out          io.Writer
	lastContext  string
	headerStyle  lipgloss.Style
	passedStyle  lipgloss.Style
	failedStyle  lipgloss.Style
	erroredStyle lipgloss.Style
	missingStyle lipgloss.Style
	numberStyle  lipgloss.Style

	// FullBacktrace disables backtrace cleaning.
	FullBacktrace bool
}

// NewDocumentationReporter creates a reporter writing to out, or to stdout when
// out is nil. Colors are only emitted when out is a color-capable terminal.
func NewDocumentationReporter(out io.Writer) *DocumentationReporter {
	if out == nil {
		out = os.Stdout
	}
	r := lipgloss.NewRenderer(out)
	return &DocumentationReporter{
		out:          out,
		headerStyle:  r.NewStyle().Bold(true),
		passedStyle:  r.NewStyle().Foreground(lipgloss.Color("2")),
		failedStyle:  r.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")),
		erroredStyle: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		missingStyle: r.NewStyle().Foreground(lipgloss.Color("240")),
		numberStyle:  r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

func (d *DocumentationReporter) Started() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.start()
	d.lastContext = ""
}

func (d *DocumentationReporter) FinishedSpecification(spec *types.Specification) {
	d.mu.Lock()
	defer d.mu.Unlock()

	outcome := d.count(spec)

	if label := spec.Context().Label(); label != d.lastContext {
		d.lastContext = label
		fmt.Fprintf(d.out, "\n%s\n\n", d.headerStyle.Render(label))
	}

	var marker string
	switch outcome {
	case types.OutcomePassed:
		marker = " [" + d.passedStyle.Render("x") + "] "
	case types.OutcomeFailed:
		marker = " " + d.failedStyle.Render("[!]") + " "
	case types.OutcomeErrored:
		marker = " " + d.erroredStyle.Render("[e]") + " "
	default:
		marker = " " + d.missingStyle.Render("[ ]") + " "
	}
	fmt.Fprintf(d.out, "%s%s\n", marker, spec.Description())
}

func (d *DocumentationReporter) AtExit() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ran > 0 {
		fmt.Fprintln(d.out)
	}
	fmt.Fprintf(d.out, "%d %s, %d %s, finished in %s seconds.\n",
		d.ran, pluralize(d.ran, "spec"),
		d.failed, pluralize(d.failed, "failure"),
		seconds(d.runtime()))
	fmt.Fprintln(d.out)
	for i, exc := range d.exceptions {
		d.writeException(i+1, exc)
	}
}

func (d *DocumentationReporter) writeException(number int, exc Exception) {
	fmt.Fprintf(d.out, "  %s\n\n", d.numberStyle.Render(fmt.Sprintf("%d) %s", number, exc.Specification.Label())))

	var parts []string
	if msg := exc.Err.Error(); msg != "" {
		parts = append(parts, "  "+msg)
	}
	backtrace := Backtrace(Frames(exc.Err), d.FullBacktrace)
	parts = append(parts, "\t"+strings.Join(backtrace, "\n\t"), "")
	fmt.Fprint(d.out, strings.Join(parts, "\n\n"))
}
