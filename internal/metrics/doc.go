// Package metrics provides observability hooks for content resolution and
// static builds.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so metrics never require nil checks at call sites:
//
//	facade := query.New(store, compiler, query.WithRecorder(metrics.NoopRecorder{}))
//
// The CLI swaps in a PrometheusRecorder when a metrics textfile is configured
// and writes it once the build finishes.
package metrics
