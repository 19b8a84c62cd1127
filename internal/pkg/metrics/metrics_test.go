package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return New(reg, reg)
}

func TestRecordSkipped(t *testing.T) {
	m := newTestMetrics()

	m.RecordSkipped("INVALID_TIMESTAMP", 3)
	m.RecordSkipped("INVALID_TIMESTAMP", 0)
	m.RecordSkipped("INVALID_TIMESTAMP", 2)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.skippedRecords.WithLabelValues("INVALID_TIMESTAMP")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSkipped("INVALID_TIMESTAMP", 1)
		m.RecordRollup("ok")
	})
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg, reg)
	second := New(reg, reg)

	first.RecordRollup("ok")
	second.RecordRollup("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.shiftRollups.WithLabelValues("ok")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := newTestMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/exceptions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exceptions/abc", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/exceptions/{id}", "404"))
	assert.Equal(t, 1.0, got)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "fleet_api_http_requests_total"))
}
