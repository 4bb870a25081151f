package metrics

import (
	"testing"
	"time"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncDocumentResult("portfolio", ResultSuccess)
	r.ObserveCompileDuration("portfolio", time.Millisecond)
	r.IncCompileCache(true)
	r.IncDanglingRelation("service", "portfolio")
	r.SetRoutes("/portfolio/[slug]", 1)
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome(BuildFailed)
}
