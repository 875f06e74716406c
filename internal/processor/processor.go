// internal/processor/processor.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/config"
	"lecture-insights-go/internal/observability"
	"lecture-insights-go/internal/pipeline"
	"lecture-insights-go/internal/types"
)

// Runner is the pipeline as seen from intake.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*types.PipelineResult, error)
}

// Upload is a multipart audio file as received by the API.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Syllabus    string
}

// Processor validates or fetches audio and hands it to the pipeline. Requests
// rejected before the pipeline starts are recorded in metrics here, so every
// request is counted once.
type Processor struct {
	runner  Runner
	metrics *observability.RequestMetrics
	cfg     config.IntakeConfig
	http    *resty.Client
	log     *logrus.Entry
}

func New(runner Runner, metrics *observability.RequestMetrics, cfg config.IntakeConfig, log *logrus.Entry) *Processor {
	return &Processor{
		runner:  runner,
		metrics: metrics,
		cfg:     cfg,
		http: resty.New().
			SetTimeout(cfg.DownloadTimeout).
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)),
		log: log,
	}
}

// ProcessUpload validates an uploaded file and runs the pipeline on it.
func (p *Processor) ProcessUpload(ctx context.Context, up Upload) (*types.PipelineResult, error) {
	start := time.Now()
	log := p.log.WithFields(logrus.Fields{
		"request_id": observability.RequestID(ctx),
		"filename":   up.Filename,
	})
	log.Info("received analysis request via file upload")

	data, err := validateUpload(up, p.cfg.MaxUploadBytes())
	if err != nil {
		return p.reject(ctx, start, log, err)
	}
	log.WithField("size", humanize.Bytes(uint64(len(data)))).Info("file validation passed")

	return p.runner.Run(ctx, pipeline.Request{Audio: data, Filename: up.Filename, Syllabus: up.Syllabus})
}

// ProcessURL downloads audio from rawURL (Google Drive share links are
// rewritten to direct downloads) and runs the pipeline on it.
func (p *Processor) ProcessURL(ctx context.Context, rawURL, syllabus string) (*types.PipelineResult, error) {
	start := time.Now()
	log := p.log.WithField("request_id", observability.RequestID(ctx))
	log.WithField("url", rawURL).Info("received analysis request via URL")

	data, name, err := p.download(ctx, rawURL, log)
	if err != nil {
		return p.reject(ctx, start, log, err)
	}
	return p.runner.Run(ctx, pipeline.Request{Audio: data, Filename: name, Syllabus: syllabus})
}

// ProcessFile runs the pipeline on audio already on local disk.
func (p *Processor) ProcessFile(ctx context.Context, path, syllabus string) (*types.PipelineResult, error) {
	start := time.Now()
	log := p.log.WithFields(logrus.Fields{
		"request_id": observability.RequestID(ctx),
		"path":       path,
	})

	data, err := p.readLocal(path)
	if err != nil {
		return p.reject(ctx, start, log, err)
	}
	return p.runner.Run(ctx, pipeline.Request{Audio: data, Filename: filepath.Base(path), Syllabus: syllabus})
}

func (p *Processor) readLocal(path string) ([]byte, error) {
	if !allowedExtension(path) {
		return nil, &apperr.ValidationError{Field: "audio", Reason: fmt.Sprintf("invalid file extension %q", filepath.Ext(path))}
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &apperr.ValidationError{Field: "audio", Reason: "file not found"}
		}
		return nil, err
	}
	defer f.Close()

	data, err := readCapped(f, p.cfg.MaxDownloadBytes())
	if err != nil {
		return nil, err
	}
	if err := checkAudio(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (p *Processor) reject(ctx context.Context, start time.Time, log *logrus.Entry, err error) (*types.PipelineResult, error) {
	log.WithFields(logrus.Fields{
		"error": err.Error(),
		"class": apperr.Classify(err).String(),
	}).Warn("request rejected before pipeline")
	p.metrics.Record(time.Since(start), false, observability.RequestID(ctx))
	return nil, err
}

// Reject counts a request that failed before reaching any Process method,
// such as an unreadable multipart body, and returns err.
func (p *Processor) Reject(ctx context.Context, err error) error {
	log := p.log.WithField("request_id", observability.RequestID(ctx))
	_, err = p.reject(ctx, time.Now(), log, err)
	return err
}

// readCapped reads at most limit bytes and reports a TooLarge validation
// error if there is more.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, &apperr.ValidationError{
			Field:    "audio",
			Reason:   fmt.Sprintf("file too large, max %s", humanize.IBytes(uint64(limit))),
			TooLarge: true,
		}
	}
	return data, nil
}

func allowedExtension(name string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
