// Package metrics defines the recorder interface for dispatch telemetry.
// Implementations are adapters: PrometheusRecorder for production scraping,
// Noop for disabled/testing.
package metrics

// Recorder receives dispatch lifecycle events.
type Recorder interface {
	// DispatchStarted records that a dispatch began.
	DispatchStarted(system, environment string)

	// DispatchCompleted records a finished dispatch with its outcome label
	// and wall-clock duration.
	DispatchCompleted(system, environment, outcome string, seconds float64)

	// RetryAttempted records one connection retry.
	RetryAttempted(system string)

	// FaultReceived records a SOAP Fault answered by AEAT.
	FaultReceived(system, code string)
}

// Noop is a no-op implementation for when metrics are disabled.
// All methods are safe to call and do nothing.
type Noop struct{}

// DispatchStarted is a no-op.
func (Noop) DispatchStarted(system, environment string) {}

// DispatchCompleted is a no-op.
func (Noop) DispatchCompleted(system, environment, outcome string, seconds float64) {}

// RetryAttempted is a no-op.
func (Noop) RetryAttempted(system string) {}

// FaultReceived is a no-op.
func (Noop) FaultReceived(system, code string) {}

// Ensure Noop implements Recorder
var _ Recorder = Noop{}
