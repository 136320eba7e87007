package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder records dispatch telemetry using Prometheus.
type PrometheusRecorder struct {
	dispatchesStarted *prometheus.CounterVec
	dispatchesTotal   *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	retriesTotal      *prometheus.CounterVec
	faultsTotal       *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder registered on the default
// Prometheus registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	return NewPrometheusRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusRecorderWithRegistry creates a recorder registered on a
// custom registry. Use this for testing.
func NewPrometheusRecorderWithRegistry(reg prometheus.Registerer) *PrometheusRecorder {
	dispatchesStarted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aeat_sender_dispatches_started_total",
		Help: "Total dispatches begun",
	}, []string{"system", "environment"})

	dispatchesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aeat_sender_dispatches_total",
		Help: "Total dispatches finished, by outcome",
	}, []string{"system", "environment", "outcome"})

	dispatchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aeat_sender_dispatch_duration_seconds",
		Help:    "Dispatch wall-clock duration",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"system", "outcome"})

	retriesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aeat_sender_connection_retries_total",
		Help: "Total connection retries",
	}, []string{"system"})

	faultsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aeat_sender_faults_total",
		Help: "Total SOAP Faults answered by AEAT, by fault code",
	}, []string{"system", "fault_code"})

	reg.MustRegister(
		dispatchesStarted,
		dispatchesTotal,
		dispatchDuration,
		retriesTotal,
		faultsTotal,
	)

	return &PrometheusRecorder{
		dispatchesStarted: dispatchesStarted,
		dispatchesTotal:   dispatchesTotal,
		dispatchDuration:  dispatchDuration,
		retriesTotal:      retriesTotal,
		faultsTotal:       faultsTotal,
	}
}

// DispatchStarted records that a dispatch began.
func (p *PrometheusRecorder) DispatchStarted(system, environment string) {
	p.dispatchesStarted.WithLabelValues(system, environment).Inc()
}

// DispatchCompleted records a finished dispatch.
func (p *PrometheusRecorder) DispatchCompleted(system, environment, outcome string, seconds float64) {
	p.dispatchesTotal.WithLabelValues(system, environment, outcome).Inc()
	p.dispatchDuration.WithLabelValues(system, outcome).Observe(seconds)
}

// RetryAttempted records one connection retry.
func (p *PrometheusRecorder) RetryAttempted(system string) {
	p.retriesTotal.WithLabelValues(system).Inc()
}

// FaultReceived records a SOAP Fault answered by AEAT.
func (p *PrometheusRecorder) FaultReceived(system, code string) {
	p.faultsTotal.WithLabelValues(system, code).Inc()
}

// Ensure PrometheusRecorder implements Recorder
var _ Recorder = (*PrometheusRecorder)(nil)
