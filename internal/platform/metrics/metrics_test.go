package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ReloadAndIngest(t *testing.T) {
	m := New()

	m.ReloadSucceeded(120*time.Millisecond, 5, 1, 3, 42)
	m.ReloadFailed(time.Second)
	m.SnapshotIngested(true)
	m.SnapshotIngested(false)

	if got := testutil.ToFloat64(m.reloads.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected 1 ok reload, got %v", got)
	}
	if got := testutil.ToFloat64(m.reloads.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed reload, got %v", got)
	}
	if got := testutil.ToFloat64(m.snapshots.WithLabelValues("skipped")); got != 1 {
		t.Fatalf("expected skipped gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.latestEntities); got != 42 {
		t.Fatalf("expected latest gauge 42, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `permit_history_snapshots_ingested_total{result="error"} 1`) {
		t.Fatalf("expected ingest counter in exposition")
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ReloadSucceeded(time.Second, 1, 0, 1, 1)
	m.ReloadFailed(time.Second)
	m.SnapshotIngested(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil metrics, got %d", rec.Code)
	}
}
