package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/observability"
	"lecture-insights-go/internal/processor"
	"lecture-insights-go/internal/resilience"
	"lecture-insights-go/internal/types"
)

const (
	serviceName = "lecture-insights-go"
	version     = "1.0.0"
)

// Intake is the processor as seen by the HTTP layer.
type Intake interface {
	ProcessUpload(ctx context.Context, up processor.Upload) (*types.PipelineResult, error)
	ProcessURL(ctx context.Context, rawURL, syllabus string) (*types.PipelineResult, error)
	Reject(ctx context.Context, err error) error
}

type Options struct {
	Intake   Intake
	Metrics  *observability.RequestMetrics
	Breakers []*resilience.Breaker
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer       prometheus.Gatherer
	Logger         *logger.Logger
	MaxUploadBytes int64
}

type handlers struct {
	Options
}

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(opts.Logger))

	h := &handlers{Options: opts}
	r.GET("/", h.root)
	r.GET("/health", h.health)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	r.POST("/audio-to-document", h.audioToDocument)
	r.POST("/audio-url-to-document", h.audioURLToDocument)
	return r
}
