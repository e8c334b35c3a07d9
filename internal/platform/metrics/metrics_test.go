package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestCountsErrors(t *testing.T) {
	m := NewMetricsManager("test")

	m.ObserveRequest(http.MethodGet, "/api/listings", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/submissions", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.APIErrorsTotal.WithLabelValues(http.MethodGet, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIErrorsTotal.WithLabelValues(http.MethodPost, "Bad Request")))
}

func TestHandlerExposesNamespacedMetrics(t *testing.T) {
	m := NewMetricsManager("marketplace")
	m.VerdictsTotal.WithLabelValues("valid").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `marketplace_validation_verdicts_total{outcome="valid"} 1`)
}

func TestRecorderMethods(t *testing.T) {
	m := NewMetricsManager("test")

	m.RecordVerdict("blocked")
	m.RecordVerdict("blocked")
	m.RecordProfanity("title")
	m.RecordImageRejection("size")
	m.MatcherFailed()
	m.ListingCreated()
	m.RecordReport("Otro motivo")
	m.ListingFlagged()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.VerdictsTotal.WithLabelValues("blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProfanityHitsTotal.WithLabelValues("title")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImageRejectionsTotal.WithLabelValues("size")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MatcherFailuresTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsCreatedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues("Otro motivo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlaggedTotal))
}
