package batch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/observability"
	"lecture-insights-go/internal/types"
)

// Intake is the subset of the processor a batch run needs.
type Intake interface {
	ProcessFile(ctx context.Context, path, syllabus string) (*types.PipelineResult, error)
	ProcessURL(ctx context.Context, rawURL, syllabus string) (*types.PipelineResult, error)
}

type Runner struct {
	intake      Intake
	concurrency int
	timeout     time.Duration
	log         *logrus.Entry
}

// NewRunner builds a runner processing at most concurrency lectures at once.
// A zero timeout means no per-lecture deadline.
func NewRunner(intake Intake, concurrency int, timeout time.Duration, log *logrus.Entry) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{intake: intake, concurrency: concurrency, timeout: timeout, log: log}
}

// Run processes every record and returns results in manifest order. A failed
// lecture becomes a result with Error set; only ctx cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, records []types.LectureRecord) ([]types.BatchResult, error) {
	results := make([]types.BatchResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.one(gctx, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) one(ctx context.Context, rec types.LectureRecord) types.BatchResult {
	reqID := uuid.New().String()
	ctx = observability.WithRequestID(ctx, reqID)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	log := r.log.WithFields(logrus.Fields{
		"lecture_id": rec.LectureID,
		"request_id": reqID,
	})

	start := time.Now()
	var (
		res *types.PipelineResult
		err error
	)
	if isURL(rec.AudioRef) {
		res, err = r.intake.ProcessURL(ctx, rec.AudioRef, rec.Syllabus)
	} else {
		res, err = r.intake.ProcessFile(ctx, rec.AudioRef, rec.Syllabus)
	}

	out := types.BatchResult{LectureRecord: rec, DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		out.Error = apperr.SafeMessage(err)
		log.WithFields(logrus.Fields{
			"error": err.Error(),
			"class": apperr.Classify(err).String(),
		}).Warn("lecture failed")
		return out
	}
	out.Result = res
	log.WithField("score", res.PedagogicalScore).Info("lecture processed")
	return out
}

func isURL(ref string) bool {
	l := strings.ToLower(ref)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
