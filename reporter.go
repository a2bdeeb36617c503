package peck

import (
	"github.com/ethereum-optimism/infra/peck/metrics"
	"github.com/ethereum-optimism/infra/peck/runner"
)

// MetricsReporter is responsible for reporting metrics from run results.
type MetricsReporter interface {
	ReportResults(suite string, result *runner.Result)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults records the aggregate counts of a finished run.
func (r *DefaultMetricsReporter) ReportResults(suite string, result *runner.Result) {
	if result == nil {
		return
	}
	metrics.RecordRun(
		suite,
		result.RunID,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Errored,
		result.Stats.Missing,
		result.Duration,
	)
}
