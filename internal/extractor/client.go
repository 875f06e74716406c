package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/config"
	"lecture-insights-go/internal/privacy"
)

const httpTimeout = 30 * time.Second

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completions gateway once per
// Generate; every failure comes back as a retryable TransientError.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	url     string
	model   string
	log     *logrus.Entry
}

func NewClient(cfg config.GenerationConfig, log *logrus.Entry) *Client {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	log.WithFields(logrus.Fields{
		"url":     cfg.URL,
		"model":   cfg.Model,
		"api_key": privacy.MaskAPIKey(cfg.APIKey),
	}).Info("llm client configured")

	return &Client{
		resty: resty.New().
			SetTimeout(httpTimeout).
			SetAuthToken(cfg.APIKey).
			SetHeader("Accept", "application/json"),
		limiter: rate.NewLimiter(limit, 1),
		url:     cfg.URL,
		model:   cfg.Model,
		log:     log,
	}
}

func (c *Client) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", c.transient(0, err)
	}

	var out chatResponse
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return "", c.transient(0, err)
	}
	log := c.log.WithFields(logrus.Fields{"call": p.Name, "http_status": resp.StatusCode()})
	if resp.StatusCode() >= 300 {
		log.Warn("llm gateway returned an error status")
		return "", c.transient(resp.StatusCode(), errors.New(snippet(resp.String())))
	}

	if len(out.Choices) == 0 {
		// some gateways answer 200 with a non-JSON content type; try the raw body
		if jerr := json.Unmarshal(resp.Body(), &out); jerr != nil || len(out.Choices) == 0 {
			return "", c.transient(resp.StatusCode(), fmt.Errorf("no choices in llm response"))
		}
	}

	content := strings.TrimSpace(out.Choices[0].Message.Content)
	log.WithField("content", privacy.SanitizeForLogging(content)).Debug("llm response")
	return content, nil
}

func (c *Client) transient(status int, err error) error {
	return &apperr.TransientError{Dependency: Dependency, StatusCode: status, Err: err}
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return "empty body"
	}
	if len(body) > 200 {
		return body[:200] + "..."
	}
	return body
}
