package peck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/peck/runner"
)

func TestDefaultMetricsReporter_ReportResults(t *testing.T) {
	result := &runner.Result{
		RunID:    "test-run-1",
		Mode:     runner.ModeSerial,
		Workers:  1,
		Duration: 100 * time.Millisecond,
		Stats: runner.ResultStats{
			Total:   5,
			Passed:  3,
			Failed:  1,
			Errored: 1,
		},
	}

	reporter := NewDefaultMetricsReporter()
	assert.NotPanics(t, func() { reporter.ReportResults("reporter-test", result) })
}

func TestDefaultMetricsReporter_NilResult(t *testing.T) {
	assert.NotPanics(t, func() { NewDefaultMetricsReporter().ReportResults("reporter-test", nil) })
}
