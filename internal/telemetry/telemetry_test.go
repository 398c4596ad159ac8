package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNilMetricsDropObservations(t *testing.T) {
	var m *Metrics

	// must not panic
	m.RefreshSucceeded(time.Second)
	m.RefreshFailed()
	m.ProcessListFailed()
	m.CacheRead("usage", true)
	assert.NotNil(t, m.Handler())
}

func TestHandlerExposesInstruments(t *testing.T) {
	m := NewMetrics()
	m.RefreshSucceeded(100 * time.Millisecond)
	m.RefreshFailed()
	m.ProcessListFailed()
	m.CacheRead("usage", true)
	m.CacheRead("processes", false)

	body := scrape(t, m)
	assert.Contains(t, body, "monitor_refresh_total 2")
	assert.Contains(t, body, "monitor_refresh_failures_total 1")
	assert.Contains(t, body, "monitor_proclist_failures_total 1")
	assert.Contains(t, body, `monitor_cache_reads_total{kind="usage",result="hit"} 1`)
	assert.Contains(t, body, `monitor_cache_reads_total{kind="processes",result="stale"} 1`)
	assert.Contains(t, body, "monitor_refresh_duration_seconds_count 1")
}

func TestIndependentRegistriesNeverCollide(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()

	first.RefreshSucceeded(time.Millisecond)

	assert.Contains(t, scrape(t, first), "monitor_refresh_total 1")
	assert.Contains(t, scrape(t, second), "monitor_refresh_total 0")
}
