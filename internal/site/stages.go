package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/syy321818/blogbuilder/internal/logfields"
	"github.com/syy321818/blogbuilder/internal/metrics"
)

// Stage is a discrete unit of work in a pipeline run.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

type namedStage struct {
	name string
	fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warnings are recorded and the run continues.
func runStages(ctx context.Context, bs *BuildState, stages []namedStage) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			bs.Report.recordStageResult(st.name, metrics.ResultCanceled, bs.recorder)
			bs.Report.Errors = append(bs.Report.Errors, se.Error())
			return se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.name] = dur
		bs.recorder.ObserveStageDuration(st.name, dur)
		slog.Debug("Stage finished", logfields.Stage(st.name), logfields.DurationMS(float64(dur.Milliseconds())))

		if err == nil {
			bs.Report.recordStageResult(st.name, metrics.ResultSuccess, bs.recorder)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			// Unknown errors are fatal by default.
			se = newFatalStageError(st.name, err)
		}

		switch se.Kind {
		case StageErrorWarning:
			bs.Report.recordStageResult(st.name, metrics.ResultWarning, bs.recorder)
			bs.Report.Warnings = append(bs.Report.Warnings, se.Error())
		case StageErrorCanceled:
			bs.Report.recordStageResult(st.name, metrics.ResultCanceled, bs.recorder)
			bs.Report.Errors = append(bs.Report.Errors, se.Error())
			return se
		default:
			bs.Report.recordStageResult(st.name, metrics.ResultFatal, bs.recorder)
			bs.Report.Errors = append(bs.Report.Errors, se.Error())
			return se
		}
	}
	return nil
}
