package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "contentpipe"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	documentResults *prom.CounterVec
	compileDuration *prom.HistogramVec
	compileCache    *prom.CounterVec
	dangling        *prom.CounterVec
	routes          *prom.GaugeVec
	buildDuration   prom.Histogram
	buildOutcome    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg. A nil
// reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.documentResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "document_results_total",
		Help:      "Document resolutions by content type and outcome",
	}, []string{"type", "result"})
	pr.compileDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "compile_duration_seconds",
		Help:      "Duration of MDX body compilation",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
	}, []string{"type"})
	pr.compileCache = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "compile_cache_total",
		Help:      "Compile cache lookups by result",
	}, []string{"result"})
	pr.dangling = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "dangling_relations_total",
		Help:      "Relation references whose target did not resolve",
	}, []string{"from", "to"})
	pr.routes = prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "routes",
		Help:      "Slugs enumerated per dynamic route template in the last build",
	}, []string{"template"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	reg.MustRegister(pr.documentResults, pr.compileDuration, pr.compileCache, pr.dangling, pr.routes, pr.buildDuration, pr.buildOutcome)
	return pr
}

func (p *PrometheusRecorder) IncDocumentResult(contentType string, result ResultLabel) {
	if p == nil {
		return
	}
	p.documentResults.WithLabelValues(contentType, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveCompileDuration(contentType string, d time.Duration) {
	if p == nil {
		return
	}
	p.compileDuration.WithLabelValues(contentType).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCompileCache(hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.compileCache.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncDanglingRelation(from, to string) {
	if p == nil {
		return
	}
	p.dangling.WithLabelValues(from, to).Inc()
}

func (p *PrometheusRecorder) SetRoutes(template string, n int) {
	if p == nil {
		return
	}
	p.routes.WithLabelValues(template).Set(float64(n))
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// WriteTextfile writes the current metrics in the node exporter textfile
// format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
