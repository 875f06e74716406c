package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/processor"
	"lecture-insights-go/internal/resilience"
	"lecture-insights-go/internal/types"
)

// multipartSlack covers form field and boundary overhead on top of the file.
const multipartSlack = 1 << 20

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": serviceName,
		"version": version,
		"status":  "running",
		"endpoints": gin.H{
			"upload": "POST /audio-to-document",
			"url":    "POST /audio-url-to-document",
			"health": "GET /health",
		},
	})
}

func (h *handlers) health(c *gin.Context) {
	status := "healthy"
	breakers := make(map[string]resilience.Snapshot, len(h.Breakers))
	for _, b := range h.Breakers {
		snap := b.Snapshot()
		breakers[b.Name()] = snap
		if snap.State != resilience.StateClosed.String() {
			status = "degraded"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           status,
		"timestamp":        time.Now().UTC(),
		"metrics":          h.Metrics.Snapshot(),
		"circuit_breakers": breakers,
	})
}

func (h *handlers) audioToDocument(c *gin.Context) {
	ctx := c.Request.Context()
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartSlack)
	}

	file, hdr, err := c.Request.FormFile("audio")
	if err != nil {
		h.fail(c, h.Intake.Reject(ctx, formError(err)))
		return
	}
	defer file.Close()

	syllabus := c.PostForm("syllabus")
	if syllabus == "" {
		syllabus = c.Query("syllabus")
	}
	result, err := h.Intake.ProcessUpload(ctx, processor.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Body:        file,
		Syllabus:    syllabus,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, result)
}

func (h *handlers) audioURLToDocument(c *gin.Context) {
	ctx := c.Request.Context()

	var req types.AudioURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, h.Intake.Reject(ctx, &apperr.ValidationError{Field: "body", Reason: "audio_url is required"}))
		return
	}

	result, err := h.Intake.ProcessURL(ctx, req.AudioURL, req.Syllabus)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, result)
}

func (h *handlers) ok(c *gin.Context, result *types.PipelineResult) {
	c.JSON(http.StatusOK, types.SuccessResponse{
		Status:    "success",
		RequestID: c.GetString(requestIDKey),
		Timestamp: time.Now().UTC(),
		Data:      result,
	})
}

func (h *handlers) fail(c *gin.Context, err error) {
	resp := types.ErrorResponse{
		Status:    "error",
		RequestID: c.GetString(requestIDKey),
		Timestamp: time.Now().UTC(),
		Error:     apperr.SafeMessage(err),
	}
	var stage *apperr.StageError
	if errors.As(err, &stage) {
		resp.Detail = "failed stage: " + stage.Stage
	}
	c.AbortWithStatusJSON(statusFor(err), resp)
}

func statusFor(err error) int {
	var validation *apperr.ValidationError
	if errors.As(err, &validation) && validation.TooLarge {
		return http.StatusRequestEntityTooLarge
	}
	switch apperr.Classify(err) {
	case apperr.ClassValidation:
		return http.StatusBadRequest
	case apperr.ClassUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return &apperr.ValidationError{Field: "audio", Reason: "file too large", TooLarge: true}
	}
	if errors.Is(err, http.ErrMissingFile) {
		return &apperr.ValidationError{Field: "audio", Reason: "file is required"}
	}
	return &apperr.ValidationError{Field: "audio", Reason: "malformed multipart body"}
}
