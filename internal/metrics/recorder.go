// Package metrics defines the observability hooks emitted by the build
// pipeline. The default recorder is a no-op; watch mode wires the Prometheus
// implementation.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for run and stage metrics.
// Implementations must tolerate concurrent use; the pipeline emits from
// worker goroutines.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncRunOutcome(outcome string) // outcome: success|partial|failed|canceled
	IncUnitsParsed(n int)
	IncUnitsExcluded(n int)
	IncPagesRendered(n int)
	IncRenderFailures(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(string)                       {}
func (NoopRecorder) IncUnitsParsed(int)                         {}
func (NoopRecorder) IncUnitsExcluded(int)                       {}
func (NoopRecorder) IncPagesRendered(int)                       {}
func (NoopRecorder) IncRenderFailures(int)                      {}
