package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	runDuration    prom.Histogram
	stageResults   *prom.CounterVec
	runOutcome     *prom.CounterVec
	unitsParsed    prom.Counter
	unitsExcluded  prom.Counter
	pagesRendered  prom.Counter
	renderFailures prom.Counter
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blogbuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogbuilder",
			Name:      "run_duration_seconds",
			Help:      "Total pipeline run duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		unitsParsed: prom.NewCounter(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "units_parsed_total",
			Help:      "Content units parsed successfully",
		}),
		unitsExcluded: prom.NewCounter(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "units_excluded_total",
			Help:      "Content units excluded by parse errors",
		}),
		pagesRendered: prom.NewCounter(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "pages_rendered_total",
			Help:      "Pages rendered successfully",
		}),
		renderFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "render_failures_total",
			Help:      "Pages whose render failed",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcome,
		pr.unitsParsed, pr.unitsExcluded, pr.pagesRendered, pr.renderFailures)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncUnitsParsed(n int) {
	if p == nil || p.unitsParsed == nil {
		return
	}
	p.unitsParsed.Add(float64(n))
}

func (p *PrometheusRecorder) IncUnitsExcluded(n int) {
	if p == nil || p.unitsExcluded == nil {
		return
	}
	p.unitsExcluded.Add(float64(n))
}

func (p *PrometheusRecorder) IncPagesRendered(n int) {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.Add(float64(n))
}

func (p *PrometheusRecorder) IncRenderFailures(n int) {
	if p == nil || p.renderFailures == nil {
		return
	}
	p.renderFailures.Add(float64(n))
}
