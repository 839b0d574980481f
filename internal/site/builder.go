// Package site orchestrates the pipeline: discover sources, parse units,
// resolve slugs, build indices, compute the page plan, and dispatch renders.
// Each run is a fresh, idempotent computation over the full input set; no
// state survives between runs.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/syy321818/blogbuilder/internal/config"
	"github.com/syy321818/blogbuilder/internal/content"
	berrors "github.com/syy321818/blogbuilder/internal/errors"
	"github.com/syy321818/blogbuilder/internal/gitmeta"
	"github.com/syy321818/blogbuilder/internal/index"
	"github.com/syy321818/blogbuilder/internal/logfields"
	"github.com/syy321818/blogbuilder/internal/metrics"
	"github.com/syy321818/blogbuilder/internal/plan"
	"github.com/syy321818/blogbuilder/internal/render"
	"github.com/syy321818/blogbuilder/internal/slug"
)

// Builder runs the content pipeline for one configuration.
type Builder struct {
	cfg      *config.Config
	renderer render.Renderer
	recorder metrics.Recorder
}

// NewBuilder creates a builder with the default HTML renderer and no-op
// metrics.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:      cfg,
		renderer: render.NewHTMLRenderer(),
		recorder: metrics.NoopRecorder{},
	}
}

// SetRenderer injects a custom renderer. Returns the builder for chaining.
func (b *Builder) SetRenderer(r render.Renderer) *Builder {
	if r != nil {
		b.renderer = r
	}
	return b
}

// SetRecorder injects a metrics recorder. Returns the builder for chaining.
func (b *Builder) SetRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		b.recorder = metrics.NoopRecorder{}
		return b
	}
	b.recorder = r
	return b
}

// BuildState carries mutable state across stages of one run.
type BuildState struct {
	Cfg     *config.Config
	Sources []content.Source
	Units   []*content.ContentUnit
	Indices *index.Indices
	Entries []plan.Entry
	Report  *RunReport

	renderer render.Renderer
	recorder metrics.Recorder
}

// Run executes the pipeline once. The report is always returned, also on
// failure; err is non-nil when the run did not complete.
func (b *Builder) Run(ctx context.Context) (*RunReport, error) {
	runID := uuid.NewString()
	report := newRunReport(runID)
	start := time.Now()

	slog.Info("Starting pipeline run", logfields.RunID(runID))

	bs := &BuildState{
		Cfg:      b.cfg,
		Report:   report,
		renderer: b.renderer,
		recorder: b.recorder,
	}

	// A bad pagination config fails the run before any indices are built.
	var runErr error
	if err := plan.ValidatePageSize(b.cfg.Pagination.Size()); err != nil {
		runErr = berrors.InvalidPlanConfig(err)
		report.Errors = append(report.Errors, runErr.Error())
	} else {
		runErr = runStages(ctx, bs, []namedStage{
			{"discover", stageDiscover},
			{"parse", stageParse},
			{"enrich", stageEnrich},
			{"slugs", stageSlugs},
			{"indexes", stageIndexes},
			{"plan", stagePlan},
			{"render", stageRender},
		})
	}

	report.Duration = time.Since(start)
	report.Outcome = outcome(report, runErr)

	b.recorder.ObserveRunDuration(report.Duration)
	b.recorder.IncRunOutcome(string(report.Outcome))

	if err := report.Persist(b.cfg.Output.Dir); err != nil {
		slog.Warn("Failed to persist run report", logfields.Error(err))
	}

	slog.Info("Pipeline run finished",
		logfields.RunID(runID),
		slog.String("outcome", string(report.Outcome)),
		slog.Int("units", report.UnitsParsed),
		slog.Int("pages", report.PagesRendered),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))

	return report, runErr
}

// StrictModeError aborts a run when strict builds encounter any unit the
// parser had to exclude.
type StrictModeError struct {
	Excluded int
}

func (e *StrictModeError) Error() string {
	return fmt.Sprintf("strict build: %d unit(s) excluded", e.Excluded)
}

func outcome(report *RunReport, runErr error) RunOutcome {
	if runErr != nil {
		var se *StageError
		if errors.As(runErr, &se) && se.Kind == StageErrorCanceled {
			return OutcomeCanceled
		}
		return OutcomeFailed
	}
	if len(report.Excluded) > 0 || len(report.FailedRenders) > 0 {
		return OutcomePartial
	}
	return OutcomeSuccess
}

func stageDiscover(_ context.Context, bs *BuildState) error {
	discovery := content.NewDiscovery(bs.Cfg.Content.Dir, bs.Cfg.Content.Separator())
	sources, err := discovery.Discover()
	if err != nil {
		return newFatalStageError("discover", berrors.DiscoveryError(err))
	}
	bs.Sources = sources
	return nil
}

// stageParse parses all sources concurrently. Results keep ingestion order
// regardless of which worker finishes first; failed units are excluded and
// recorded, not retried.
func stageParse(ctx context.Context, bs *BuildState) error {
	type result struct {
		unit *content.ContentUnit
		err  error
	}
	results := make([]result, len(bs.Sources))

	workers := bs.Cfg.Build.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				unit, err := content.Parse(bs.Sources[idx])
				results[idx] = result{unit: unit, err: err}
			}
		}()
	}
	for idx := range bs.Sources {
		select {
		case <-ctx.Done():
		case jobs <- idx:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return newCanceledStageError("parse", err)
	}

	for idx, res := range results {
		if res.err != nil {
			bs.Report.Excluded = append(bs.Report.Excluded, ExcludedUnit{
				Source: bs.Sources[idx].ID(),
				Reason: res.err.Error(),
			})
			slog.Warn("Excluding unit", logfields.Source(bs.Sources[idx].ID()), logfields.Error(res.err))
			continue
		}
		res.unit.Ordinal = len(bs.Units)
		bs.Units = append(bs.Units, res.unit)
	}

	bs.Report.UnitsParsed = len(bs.Units)
	bs.recorder.IncUnitsParsed(len(bs.Units))
	bs.recorder.IncUnitsExcluded(len(bs.Report.Excluded))

	if bs.Cfg.Build.Strict && len(bs.Report.Excluded) > 0 {
		return newFatalStageError("parse",
			berrors.StageFailed("parse", &StrictModeError{Excluded: len(bs.Report.Excluded)}))
	}
	return nil
}

// stageEnrich attaches git lastmod metadata when enabled and available.
// Failures here degrade, never abort: lastmod is display metadata.
func stageEnrich(_ context.Context, bs *BuildState) error {
	if !bs.Cfg.Content.GitLastmod {
		return nil
	}

	enricher, err := gitmeta.Open(bs.Cfg.Content.Dir)
	if err != nil {
		return newWarnStageError("enrich", err)
	}
	if enricher == nil {
		gitmeta.LogSkipped(bs.Cfg.Content.Dir)
		return nil
	}

	for _, u := range bs.Units {
		path := u.Source
		if i := strings.IndexByte(path, '#'); i >= 0 {
			path = path[:i]
		}
		lastmod, err := enricher.Lastmod(bs.Cfg.Content.Dir, path)
		if err != nil {
			return newWarnStageError("enrich", err)
		}
		u.Lastmod = lastmod
	}
	return nil
}

func stageSlugs(_ context.Context, bs *BuildState) error {
	registry := slug.NewRegistry()
	for _, u := range bs.Units {
		u.Slug = slug.Make(u.Title, u.Date)
		if err := registry.Claim(u.Slug, u.Source); err != nil {
			return newFatalStageError("slugs", berrors.SlugConflict(err))
		}
	}
	return nil
}

func stageIndexes(_ context.Context, bs *BuildState) error {
	ix, err := index.Build(bs.Units, bs.Cfg.Content.Policy())
	if err != nil {
		return newFatalStageError("indexes", err)
	}
	bs.Indices = ix
	return nil
}

func stagePlan(_ context.Context, bs *BuildState) error {
	entries, err := plan.Generate(bs.Indices, bs.Cfg.Pagination.Size())
	if err != nil {
		return newFatalStageError("plan", err)
	}
	bs.Entries = entries
	bs.Report.PagesPlanned = len(entries)
	return nil
}

func stageRender(ctx context.Context, bs *BuildState) error {
	dispatcher := render.NewDispatcher(bs.renderer, bs.Cfg.Output.Dir, bs.Cfg.Build.Workers)
	rendered, failures := dispatcher.Dispatch(ctx, bs.Entries, bs.Indices, render.SiteMeta{
		Title:       bs.Cfg.Site.Title,
		BaseURL:     bs.Cfg.Site.BaseURL,
		Description: bs.Cfg.Site.Description,
	})

	bs.Report.PagesRendered = rendered
	for _, f := range failures {
		bs.Report.FailedRenders = append(bs.Report.FailedRenders, FailedRender{
			OutputPath: f.OutputPath,
			Reason:     f.Err.Error(),
		})
	}
	bs.recorder.IncPagesRendered(rendered)
	bs.recorder.IncRenderFailures(len(failures))

	if err := ctx.Err(); err != nil {
		return newCanceledStageError("render", err)
	}
	return nil
}
