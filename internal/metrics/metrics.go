// Package metrics holds the Prometheus collectors of the card site.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess  = "success"
	ResultFailed   = "failed"
	ResultRejected = "rejected"
	ResultSkipped  = "skipped"
)

// Metrics groups the collectors. A nil *Metrics records nothing, so services
// can be built without metrics in tests.
type Metrics struct {
	contactSubmissions *prometheus.CounterVec
	photoUploads       *prometheus.CounterVec
	analyticsWrites    *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	gatherer           prometheus.Gatherer
}

// New creates the collectors and registers them on reg. Collectors that are
// already registered are reused.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		contactSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardsite",
			Name:      "contact_submissions_total",
			Help:      "Contact submissions by outcome.",
		}, []string{"result"}),
		photoUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardsite",
			Name:      "photo_uploads_total",
			Help:      "Selfie upload attempts by outcome.",
		}, []string{"result"}),
		analyticsWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardsite",
			Name:      "analytics_writes_total",
			Help:      "Analytics sink writes by sink and outcome.",
		}, []string{"sink", "result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cardsite",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}

	m.contactSubmissions = register(reg, m.contactSubmissions)
	m.photoUploads = register(reg, m.photoUploads)
	m.analyticsWrites = register(reg, m.analyticsWrites)
	if err := reg.Register(m.requestDuration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.requestDuration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m, nil
}

func register(reg *prometheus.Registry, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ContactSubmission(result string) {
	if m == nil {
		return
	}
	m.contactSubmissions.WithLabelValues(result).Inc()
}

func (m *Metrics) PhotoUpload(result string) {
	if m == nil {
		return
	}
	m.photoUploads.WithLabelValues(result).Inc()
}

func (m *Metrics) AnalyticsWrite(sink, result string) {
	if m == nil {
		return
	}
	m.analyticsWrites.WithLabelValues(sink, result).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
