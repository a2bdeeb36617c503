package reporting

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/peck/types"
)

// contextRow accumulates the specifications of one context.
type contextRow struct {
	label    string
	specs    []*types.Specification
	duration time.Duration
	counts   Counts
}

// TableReporter renders a summary table of every context at exit.
type TableReporter struct {
	counter

	out                 io.Writer
	title               string
	showSpecifications  bool
	rows                []*contextRow
	rowsByContextLabels map[string]*contextRow
}

// NewTableReporter creates a table reporter writing to out, or to stdout when
// out is nil. showSpecifications adds one row per specification.
func NewTableReporter(out io.Writer, title string, showSpecifications bool) *TableReporter {
	if out == nil {
		out = os.Stdout
	}
	return &TableReporter{
		out:                 out,
		title:               title,
		showSpecifications:  showSpecifications,
		rowsByContextLabels: make(map[string]*contextRow),
	}
}

func (tr *TableReporter) Started() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.start()
	tr.rows = nil
	tr.rowsByContextLabels = make(map[string]*contextRow)
}

func (tr *TableReporter) FinishedSpecification(spec *types.Specification) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	outcome := tr.count(spec)

	label := spec.Context().Label()
	row, ok := tr.rowsByContextLabels[label]
	if !ok {
		row = &contextRow{label: label}
		tr.rowsByContextLabels[label] = row
		tr.rows = append(tr.rows, row)
	}
	row.specs = append(row.specs, spec)
	row.duration += spec.Duration()
	row.counts.Ran++
	switch outcome {
	case types.OutcomePassed:
		row.counts.Passed++
	case types.OutcomeFailed:
		row.counts.Failed++
	case types.OutcomeErrored:
		row.counts.Errored++
	case types.OutcomeMissing:
		row.counts.Missing++
	}
}

func (tr *TableReporter) AtExit() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	fmt.Fprint(tr.out, tr.render())
}

// Render returns the table for the notifications received so far.
func (tr *TableReporter) Render() string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.render()
}

func (tr *TableReporter) render() string {
	t := table.NewWriter()
	if tr.title != "" {
		t.SetTitle(tr.title)
	}

	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Specs", "Passed", "Failed", "Errored", "Missing", "Status",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 200, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Specs", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Errored", Align: text.AlignRight},
		{Name: "Missing", Align: text.AlignRight},
	})

	for _, row := range tr.rows {
		t.AppendRow(table.Row{
			"Context",
			row.label,
			formatDuration(row.duration),
			row.counts.Ran,
			row.counts.Passed,
			row.counts.Failed,
			row.counts.Errored,
			row.counts.Missing,
			statusText(row.counts),
		})
		if tr.showSpecifications {
			for _, spec := range row.specs {
				t.AppendRow(table.Row{
					"Specification",
					fmt.Sprintf("├── %s", spec.Description()),
					formatDuration(spec.Duration()),
					"", "", "", "", "",
					outcomeText(spec.Outcome()),
				})
			}
		}
		t.AppendSeparator()
	}

	missing := len(tr.missing)
	totals := Counts{Ran: tr.ran, Passed: tr.passed, Failed: tr.failed, Errored: tr.errored, Missing: missing}
	switch {
	case tr.failed > 0 || tr.errored > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case missing > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(tr.runtime()),
		tr.ran,
		tr.passed,
		tr.failed,
		tr.errored,
		missing,
		statusText(totals),
	})

	return t.Render() + "\n"
}

func statusText(c Counts) string {
	switch {
	case c.Errored > 0:
		return "ERROR"
	case c.Failed > 0:
		return "FAIL"
	case c.Missing > 0:
		return "MISSING"
	}
	return "PASS"
}

func outcomeText(o types.Outcome) string {
	switch o {
	case types.OutcomePassed:
		return "PASS"
	case types.OutcomeFailed:
		return "FAIL"
	case types.OutcomeErrored:
		return "ERROR"
	case types.OutcomeMissing:
		return "MISSING"
	}
	return "UNKNOWN"
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}
