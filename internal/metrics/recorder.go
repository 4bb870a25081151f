package metrics

import "time"

// ResultLabel enumerates document resolution outcomes for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultNotFound ResultLabel = "not_found"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildSuccess BuildOutcomeLabel = "success"
	BuildFailed  BuildOutcomeLabel = "failed"
)

// Recorder defines observability hooks for content resolution and builds.
// All methods must be safe for concurrent use.
type Recorder interface {
	IncDocumentResult(contentType string, result ResultLabel)
	ObserveCompileDuration(contentType string, d time.Duration)
	IncCompileCache(hit bool)
	IncDanglingRelation(from, to string)
	SetRoutes(template string, n int)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncDocumentResult(string, ResultLabel)        {}
func (NoopRecorder) ObserveCompileDuration(string, time.Duration) {}
func (NoopRecorder) IncCompileCache(bool)                         {}
func (NoopRecorder) IncDanglingRelation(string, string)           {}
func (NoopRecorder) SetRoutes(string, int)                        {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)           {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)            {}
