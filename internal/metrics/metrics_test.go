package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ContactSubmission(ResultSuccess)
	m.ContactSubmission(ResultSuccess)
	m.PhotoUpload(ResultFailed)
	m.AnalyticsWrite("notion", ResultSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.contactSubmissions.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.photoUploads.WithLabelValues(ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyticsWrites.WithLabelValues("notion", ResultSuccess)))
}

func TestMetrics_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	second.ContactSubmission(ResultRejected)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.contactSubmissions.WithLabelValues(ResultRejected)))
}

func TestMetrics_Handler(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	m.ObserveRequest("POST", "/api/contact", 200, 15*time.Millisecond)
	m.PhotoUpload(ResultSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "cardsite_photo_uploads_total")
	assert.Contains(t, string(body), "cardsite_http_request_duration_seconds")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ContactSubmission(ResultSuccess)
	m.PhotoUpload(ResultSuccess)
	m.AnalyticsWrite("pg", ResultFailed)
	m.ObserveRequest("GET", "/", 200, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
