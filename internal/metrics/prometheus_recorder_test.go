package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncDocumentResult("portfolio", ResultSuccess)
	pr.IncDocumentResult("portfolio", ResultWarning)
	pr.ObserveCompileDuration("portfolio", 3*time.Millisecond)
	pr.IncCompileCache(true)
	pr.IncCompileCache(false)
	pr.IncDanglingRelation("service", "portfolio")
	pr.SetRoutes("/portfolio/[slug]", 2)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(BuildSuccess)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"contentpipe_document_results_total",
		"contentpipe_compile_duration_seconds",
		"contentpipe_compile_cache_total",
		"contentpipe_dangling_relations_total",
		"contentpipe_routes",
		"contentpipe_build_duration_seconds",
		"contentpipe_build_outcomes_total",
	} {
		require.True(t, names[want], "missing %s", want)
	}
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetRoutes("/services/[slug]", 4)
	path := filepath.Join(t.TempDir(), "contentpipe.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `contentpipe_routes{template="/services/[slug]"} 4`), string(data))
}

func TestNilPrometheusRecorder(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncDocumentResult("x", ResultFatal)
	pr.SetRoutes("x", 1)
}
