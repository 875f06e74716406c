// Package app builds the shared object graph used by both binaries.
package app

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lecture-insights-go/internal/config"
	"lecture-insights-go/internal/extractor"
	"lecture-insights-go/internal/logger"
	"lecture-insights-go/internal/observability"
	"lecture-insights-go/internal/pipeline"
	"lecture-insights-go/internal/privacy"
	"lecture-insights-go/internal/processor"
	"lecture-insights-go/internal/resilience"
	"lecture-insights-go/internal/transcription"
)

type App struct {
	Config       *config.Config
	Log          *logger.Logger
	Metrics      *observability.RequestMetrics
	Breakers     []*resilience.Breaker
	Resources    *privacy.Manager
	Orchestrator *pipeline.Orchestrator
	Processor    *processor.Processor
}

// New wires breakers, metrics and clients. reg may be nil when nothing
// scrapes the process, as in batch runs.
func New(cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) *App {
	var breakerState *prometheus.GaugeVec
	if reg != nil {
		breakerState = promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "lecture_breaker_state",
			Help: "Circuit breaker state per dependency (0 closed, 1 half-open, 2 open)",
		}, []string{"dependency"})
	}
	settings := resilience.Settings{
		FailureThreshold: cfg.Resilience.FailureThreshold,
		RecoveryTimeout:  cfg.Resilience.RecoveryTimeout,
		OnStateChange: func(name string, _, to resilience.State) {
			if breakerState != nil {
				breakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	}
	speech := resilience.NewBreaker(transcription.Dependency, settings, log.Component("breaker"))
	generation := resilience.NewBreaker(extractor.Dependency, settings, log.Component("breaker"))
	if breakerState != nil {
		breakerState.WithLabelValues(speech.Name()).Set(float64(resilience.StateClosed))
		breakerState.WithLabelValues(generation.Name()).Set(float64(resilience.StateClosed))
	}

	tempDir := cfg.Intake.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	resources := privacy.NewManager(tempDir, log.Component("privacy"))
	if reg != nil {
		promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
			Name: "lecture_ephemeral_resources_live",
			Help: "Ephemeral audio files created but not yet destroyed",
		}, func() float64 { return float64(resources.Live()) })
	}

	metrics := observability.NewRequestMetrics(log.Component("metrics"), reg)
	orch := pipeline.New(pipeline.Deps{
		Transcriber:       transcription.New(cfg.Speech, log.Component("transcription")),
		Generator:         extractor.New(cfg.Generation, log.Component("extractor")),
		SpeechBreaker:     speech,
		GenerationBreaker: generation,
		Retry: resilience.NewExecutor(resilience.Policy{
			MaxRetries:    cfg.Resilience.MaxRetries,
			InitialDelay:  cfg.Resilience.InitialDelay,
			BackoffFactor: cfg.Resilience.BackoffFactor,
		}, log.Component("retry")),
		Tracker:   observability.NewTracker(log.Component("tracker"), reg),
		Metrics:   metrics,
		Resources: resources,
		Log:       log.Component("pipeline"),
	}, pipeline.Options{
		CallTimeout:     cfg.Resilience.CallTimeout,
		ExtendedMetrics: cfg.Pipeline.ExtendedMetrics,
	})

	return &App{
		Config:       cfg,
		Log:          log,
		Metrics:      metrics,
		Breakers:     []*resilience.Breaker{speech, generation},
		Resources:    resources,
		Orchestrator: orch,
		Processor:    processor.New(orch, metrics, cfg.Intake, log.Component("processor")),
	}
}
