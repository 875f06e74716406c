package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// Tracker wraps named operations in a timing span.
type Tracker struct {
	log      *logrus.Entry
	duration *prometheus.HistogramVec
}

// NewTracker builds a tracker. reg may be nil to skip the histogram.
func NewTracker(log *logrus.Entry, reg prometheus.Registerer) *Tracker {
	t := &Tracker{log: log}
	if reg != nil {
		t.duration = promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lecture_operation_duration_seconds",
				Help:    "Duration of tracked pipeline operations in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"operation", "status"},
		)
	}
	return t
}

// Track runs fn inside a span called name. The error from fn is returned as is.
func (t *Tracker) Track(ctx context.Context, name string, fn func(context.Context) error) error {
	fields := logrus.Fields{
		"operation":  name,
		"request_id": RequestID(ctx),
	}
	if parent := SpanPath(ctx); parent != "" {
		fields["parent"] = parent
	}
	log := t.log.WithFields(fields)

	start := time.Now()
	log.WithField("timestamp", start.UTC().Format(time.RFC3339Nano)).Infof("starting %s", name)

	err := fn(withSpan(ctx, name))
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "failed"
		log.WithFields(logrus.Fields{
			"duration": duration.String(),
			"status":   status,
			"error":    err.Error(),
		}).Errorf("failed %s", name)
	} else {
		log.WithFields(logrus.Fields{
			"duration": duration.String(),
			"status":   status,
		}).Infof("completed %s", name)
	}
	if t.duration != nil {
		t.duration.WithLabelValues(name, status).Observe(duration.Seconds())
	}
	return err
}
