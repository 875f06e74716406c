package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/config"
	"lecture-insights-go/internal/privacy"
)

const defaultTimeout = 30 * time.Second

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Client talks to an OpenAI-compatible /audio/transcriptions endpoint.
// It makes exactly one attempt per call; retries belong to the caller.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	url     string
	model   string
	log     *logrus.Entry
}

func NewClient(cfg config.SpeechConfig, log *logrus.Entry) *Client {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	log.WithFields(logrus.Fields{
		"url":     cfg.URL,
		"model":   cfg.Model,
		"api_key": privacy.MaskAPIKey(cfg.APIKey),
	}).Info("speech client configured")

	return &Client{
		resty: resty.New().
			SetTimeout(defaultTimeout).
			SetAuthToken(cfg.APIKey).
			SetHeader("Accept", "application/json"),
		limiter: rate.NewLimiter(limit, 1),
		url:     cfg.URL,
		model:   cfg.Model,
		log:     log,
	}
}

func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &apperr.TransientError{Dependency: Dependency, Err: err}
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetFile("file", path).
		SetFormData(map[string]string{"model": c.model}).
		Post(c.url)
	if err != nil {
		return "", &apperr.TransientError{Dependency: Dependency, Err: err}
	}
	if resp.StatusCode() >= 300 {
		return "", &apperr.TransientError{
			Dependency: Dependency,
			StatusCode: resp.StatusCode(),
			Err:        errors.New(snippet(resp.String())),
		}
	}

	var out transcriptionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", &apperr.TransientError{
			Dependency: Dependency,
			Err:        fmt.Errorf("decode transcription response: %w", err),
		}
	}

	text := strings.TrimSpace(out.Text)
	c.log.WithFields(logrus.Fields{
		"file":   filepath.Base(path),
		"length": len(text),
	}).Info("transcription completed")
	return text, nil
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 200 {
		return body[:200] + "..."
	}
	if body == "" {
		return "empty body"
	}
	return body
}
