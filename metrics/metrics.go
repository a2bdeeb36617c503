package metrics

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ethereum-optimism/infra/peck/types"
)

const (
	MetricsNamespace = "peck"
)

var (
	Debug                bool = false // Log every metric increment at debug level
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	specificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "specifications_total",
		Help:      "Count of finished specifications by outcome",
	}, []string{
		"suite",
		"outcome",
	})

	specificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "specification_duration_seconds",
		Help:      "Duration of individual specifications",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{
		"suite",
	})

	exceptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "exceptions_total",
		Help:      "Count of unhandled exceptions captured from specifications",
	}, []string{
		"suite",
	})

	missingTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "missing_total",
		Help:      "Count of missing notifications",
	}, []string{
		"suite",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last run",
	}, []string{
		"suite",
		"run_id",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Specification counts of the last run",
	}, []string{
		"suite",
		"run_id",
		"outcome",
	})
)

// Handler serves the default prometheus registry.
func Handler() http.Handler { return promhttp.Handler() }

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordRun publishes the counts of a completed run.
func RecordRun(suite, runID string, passed, failed, errored, missing int, duration time.Duration) {
	runResults.WithLabelValues(suite, runID, string(types.OutcomePassed)).Set(float64(passed))
	runResults.WithLabelValues(suite, runID, string(types.OutcomeFailed)).Set(float64(failed))
	runResults.WithLabelValues(suite, runID, string(types.OutcomeErrored)).Set(float64(errored))
	runResults.WithLabelValues(suite, runID, string(types.OutcomeMissing)).Set(float64(missing))
	runDuration.WithLabelValues(suite, runID).Set(duration.Seconds())
}

// Observer records lifecycle notifications as prometheus metrics. It is
// registered on an events.Bus like any other observer.
type Observer struct {
	suite string

	mu      sync.Mutex
	started time.Time
}

func NewObserver(suite string) *Observer {
	return &Observer{suite: suite}
}

func (o *Observer) Started() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = time.Now()
}

func (o *Observer) FinishedSpecification(spec *types.Specification) {
	outcome := spec.Outcome()
	if Debug {
		log.Debug("metric inc",
			"m", "specifications_total",
			"suite", o.suite,
			"outcome", outcome)
	}
	specificationsTotal.WithLabelValues(o.suite, string(outcome)).Inc()
	specificationDuration.WithLabelValues(o.suite).Observe(spec.Duration().Seconds())
}

func (o *Observer) ReceivedException(*types.Specification, error) {
	exceptionsTotal.WithLabelValues(o.suite).Inc()
}

func (o *Observer) ReceivedMissing(*types.Specification) {
	missingTotal.WithLabelValues(o.suite).Inc()
}

// Elapsed returns the time since the last started notification.
func (o *Observer) Elapsed() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started.IsZero() {
		return 0
	}
	return time.Since(o.started)
}
