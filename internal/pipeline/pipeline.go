// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/extractor"
	"lecture-insights-go/internal/observability"
	"lecture-insights-go/internal/privacy"
	"lecture-insights-go/internal/resilience"
	"lecture-insights-go/internal/transcription"
	"lecture-insights-go/internal/types"
)

const defaultCallTimeout = 30 * time.Second

// Request is one lecture to assess.
type Request struct {
	Audio    []byte
	Filename string
	Syllabus string
}

// Deps are the shared collaborators. Breakers and Metrics are process-wide.
type Deps struct {
	Transcriber       transcription.Transcriber
	Generator         extractor.Generator
	SpeechBreaker     *resilience.Breaker
	GenerationBreaker *resilience.Breaker
	Retry             *resilience.Executor
	Tracker           *observability.Tracker
	Metrics           *observability.RequestMetrics
	Resources         *privacy.Manager
	Log               *logrus.Entry
}

type Options struct {
	CallTimeout     time.Duration
	ExtendedMetrics bool
}

// Orchestrator runs transcribe -> analyze -> score for one lecture at a time;
// it is safe to share across goroutines.
type Orchestrator struct {
	Deps
	opts Options
}

func New(deps Deps, opts Options) *Orchestrator {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	return &Orchestrator{Deps: deps, opts: opts}
}

// Run assesses one lecture. The audio only ever exists in an ephemeral file
// that is destroyed before Run returns, and the request is recorded in
// Metrics exactly once. Failures come back as *apperr.StageError.
func (o *Orchestrator) Run(ctx context.Context, req Request) (result *types.PipelineResult, err error) {
	start := time.Now()
	reqID := observability.RequestID(ctx)
	log := o.Log.WithField("request_id", reqID)

	defer func() {
		o.Metrics.Record(time.Since(start), err == nil, reqID)
	}()

	stage := StageCreated
	fail := func(cause error) (*types.PipelineResult, error) {
		log.WithFields(logrus.Fields{
			"stage": stage.String(),
			"error": cause.Error(),
		}).Error("pipeline failed")
		failed := stage
		stage = StageFailed
		return nil, &apperr.StageError{Stage: failed.String(), Err: cause}
	}
	advance := func(next Stage) {
		log.WithFields(logrus.Fields{"from": stage.String(), "to": next.String()}).Debug("stage transition")
		stage = next
	}

	res, err := o.Resources.Create(req.Audio, strings.ToLower(filepath.Ext(req.Filename)))
	if err != nil {
		return fail(err)
	}
	defer res.Destroy()

	advance(StageTranscribing)
	var transcript string
	err = o.guard(ctx, "transcription", o.SpeechBreaker, func(ctx context.Context) error {
		text, err := o.Transcriber.Transcribe(ctx, res.Path)
		transcript = text
		return err
	})
	if err != nil {
		return fail(err)
	}
	log.WithField("transcript", privacy.SanitizeForLogging(transcript)).Info("transcript received")

	advance(StageAnalyzing)
	if strings.TrimSpace(transcript) == "" {
		return fail(&apperr.ValidationError{Field: "transcript", Reason: "transcript cannot be empty"})
	}

	var analysis string
	err = o.guard(ctx, "analysis", o.GenerationBreaker, func(ctx context.Context) error {
		out, err := o.Generator.Generate(ctx, extractor.BuildAnalysisPrompt(transcript, req.Syllabus), extractor.AnalysisParams)
		analysis = out
		return err
	})
	if err != nil {
		return fail(err)
	}

	advance(StageScoring)
	if strings.TrimSpace(analysis) == "" {
		return fail(&apperr.ValidationError{Field: "analysis", Reason: "analysis cannot be empty"})
	}

	// started after analysis so the enrichment never takes a half-open
	// trial ahead of the primary result
	var (
		wg       sync.WaitGroup
		extended *types.ExtendedMetrics
	)
	if o.opts.ExtendedMetrics {
		mctx, cancel := context.WithCancel(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			extended = o.extendedMetrics(mctx, transcript, log)
		}()
		defer func() {
			cancel()
			wg.Wait()
		}()
	}

	var raw string
	err = o.guard(ctx, "scoring", o.GenerationBreaker, func(ctx context.Context) error {
		out, err := o.Generator.Generate(ctx, extractor.BuildScorePrompt(analysis, transcript, req.Syllabus), extractor.ScoringParams)
		raw = out
		return err
	})
	if err != nil {
		return fail(err)
	}
	score, perr := extractor.ParseScore(raw)
	if perr != nil {
		log.WithFields(logrus.Fields{
			"error": perr.Error(),
			"score": score.Score,
		}).Warn("score payload malformed, using fallback")
	}

	wg.Wait()
	advance(StageCompleted)

	result = &types.PipelineResult{
		Analysis:              analysis,
		PedagogicalScore:      score.Score,
		ScoreReasoning:        score.Reasoning,
		ProcessingTimeSeconds: math.Round(time.Since(start).Seconds()*100) / 100,
		ExtendedMetrics:       extended,
	}
	log.WithFields(logrus.Fields{
		"score":    result.PedagogicalScore,
		"extended": extended != nil,
	}).Info("pipeline completed")
	return result, nil
}

// extendedMetrics is best effort: any failure is logged and yields nil.
func (o *Orchestrator) extendedMetrics(ctx context.Context, transcript string, log *logrus.Entry) *types.ExtendedMetrics {
	var raw string
	err := o.guard(ctx, "pedagogical_metrics", o.GenerationBreaker, func(ctx context.Context) error {
		out, err := o.Generator.Generate(ctx, extractor.BuildMetricsPrompt(transcript), extractor.MetricsParams)
		raw = out
		return err
	})
	if err != nil {
		log.WithField("error", err.Error()).Warn("extended metrics unavailable")
		return nil
	}
	m, err := extractor.ParseExtendedMetrics(raw)
	if err != nil {
		log.WithField("error", err.Error()).Warn("extended metrics payload malformed")
		return nil
	}
	return &m
}

// guard composes Tracker(span) ∘ Retry ∘ Breaker ∘ Timeout around call.
func (o *Orchestrator) guard(ctx context.Context, span string, b *resilience.Breaker, call func(context.Context) error) error {
	return o.Tracker.Track(ctx, span, func(ctx context.Context) error {
		return o.Retry.Do(ctx, span, func(ctx context.Context) error {
			return b.Call(ctx, func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
				defer cancel()
				return call(ctx)
			})
		})
	})
}
