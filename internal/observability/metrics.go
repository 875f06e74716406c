package observability

import (
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// MetricsSnapshot is the operator view served on /health.
type MetricsSnapshot struct {
	TotalRequests                uint64  `json:"total_requests"`
	TotalErrors                  uint64  `json:"total_errors"`
	ErrorRatePercent             float64 `json:"error_rate_percent"`
	AverageProcessingTimeSeconds float64 `json:"average_processing_time_seconds"`
}

// RequestMetrics counts completed requests. Safe for concurrent use.
type RequestMetrics struct {
	log *logrus.Entry

	mu                  sync.Mutex
	totalRequests       uint64
	totalErrors         uint64
	totalProcessingTime time.Duration

	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewRequestMetrics builds the counters. reg may be nil to skip Prometheus.
func NewRequestMetrics(log *logrus.Entry, reg prometheus.Registerer) *RequestMetrics {
	m := &RequestMetrics{log: log}
	if reg != nil {
		factory := promauto.With(reg)
		m.requests = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lecture_requests_total",
				Help: "Completed analysis requests by outcome",
			},
			[]string{"outcome"},
		)
		m.duration = factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lecture_request_duration_seconds",
				Help:    "End to end analysis request duration in seconds",
				Buckets: []float64{1, 5, 10, 20, 30, 60, 120, 300},
			},
		)
	}
	return m
}

// Record must be called exactly once per request, after it has finished.
func (m *RequestMetrics) Record(processing time.Duration, success bool, requestID string) {
	m.mu.Lock()
	m.totalRequests++
	m.totalProcessingTime += processing
	if !success {
		m.totalErrors++
	}
	m.mu.Unlock()

	if m.requests != nil {
		outcome := "success"
		if !success {
			outcome = "error"
		}
		m.requests.WithLabelValues(outcome).Inc()
		m.duration.Observe(processing.Seconds())
	}

	m.log.WithFields(logrus.Fields{
		"request_id":      requestID,
		"processing_time": processing.Round(10 * time.Millisecond).String(),
		"success":         success,
	}).Info("request completed")
}

func (m *RequestMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		TotalRequests: m.totalRequests,
		TotalErrors:   m.totalErrors,
	}
	if m.totalRequests > 0 {
		snap.ErrorRatePercent = round2(float64(m.totalErrors) / float64(m.totalRequests) * 100)
		snap.AverageProcessingTimeSeconds = round2(m.totalProcessingTime.Seconds() / float64(m.totalRequests))
	}
	return snap
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
