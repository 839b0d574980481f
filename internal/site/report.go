package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/syy321818/blogbuilder/internal/metrics"
)

// RunOutcome is the user-visible classification of a pipeline run.
type RunOutcome string

const (
	OutcomeSuccess  RunOutcome = "success"
	OutcomePartial  RunOutcome = "partial"
	OutcomeFailed   RunOutcome = "failed"
	OutcomeCanceled RunOutcome = "canceled"
)

// ExcludedUnit records one source rejected at parse time. Exclusions are
// per-unit and non-fatal unless strict mode is on.
type ExcludedUnit struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// FailedRender records one render failure by output path.
type FailedRender struct {
	OutputPath string `json:"output_path"`
	Reason     string `json:"reason"`
}

// StageCount aggregates per-stage result classifications.
type StageCount struct {
	Success  int `json:"success,omitempty"`
	Warning  int `json:"warning,omitempty"`
	Fatal    int `json:"fatal,omitempty"`
	Canceled int `json:"canceled,omitempty"`
}

// RunReport is the complete record of one pipeline run.
type RunReport struct {
	RunID          string                   `json:"run_id"`
	StartedAt      time.Time                `json:"started_at"`
	Duration       time.Duration            `json:"duration_ns"`
	Outcome        RunOutcome               `json:"outcome"`
	UnitsParsed    int                      `json:"units_parsed"`
	Excluded       []ExcludedUnit           `json:"excluded_units,omitempty"`
	PagesPlanned   int                      `json:"pages_planned"`
	PagesRendered  int                      `json:"pages_rendered"`
	FailedRenders  []FailedRender           `json:"failed_renders,omitempty"`
	StageDurations map[string]time.Duration `json:"stage_durations_ns,omitempty"`
	StageCounts    map[string]StageCount    `json:"stage_counts,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
	Errors         []string                 `json:"errors,omitempty"`
}

func newRunReport(runID string) *RunReport {
	return &RunReport{
		RunID:          runID,
		StartedAt:      time.Now().UTC(),
		StageDurations: make(map[string]time.Duration),
		StageCounts:    make(map[string]StageCount),
	}
}

func (r *RunReport) recordStageResult(stage string, res metrics.ResultLabel, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	switch res {
	case metrics.ResultSuccess:
		sc.Success++
	case metrics.ResultWarning:
		sc.Warning++
	case metrics.ResultFatal:
		sc.Fatal++
	case metrics.ResultCanceled:
		sc.Canceled++
	}
	r.StageCounts[stage] = sc
	if recorder != nil {
		recorder.IncStageResult(stage, res)
	}
}

// ReportFileName is where a run report is persisted under the output dir.
const ReportFileName = "build-report.json"

// Persist writes the report as JSON into dir.
func (r *RunReport) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	path := filepath.Join(dir, ReportFileName)
	// #nosec G306 -- build reports are not sensitive
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	return nil
}
