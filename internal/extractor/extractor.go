package extractor

import (
	"context"

	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/config"
)

const Dependency = "generation"

// Params are the per-call generation knobs. Name identifies the call kind
// and is what the mock switches on.
type Params struct {
	Name        string
	Temperature float64
	MaxTokens   int
}

var (
	AnalysisParams = Params{Name: "analysis", Temperature: 0.2, MaxTokens: 800}
	ScoringParams  = Params{Name: "scoring", Temperature: 0.2, MaxTokens: 200}
	MetricsParams  = Params{Name: "pedagogical_metrics", Temperature: 0.1, MaxTokens: 300}
)

// Generator sends a single prompt to a chat model and returns its text.
type Generator interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// New returns the HTTP client, or the mock when USE_MOCK_LLM is on.
func New(cfg config.GenerationConfig, log *logrus.Entry) Generator {
	if cfg.UseMock {
		log.Info("mock LLM mode ON - returning deterministic outputs")
		return Mock{}
	}
	return NewClient(cfg, log)
}
