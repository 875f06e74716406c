package types

import "time"

// --------------------------------------------
// Request bodies
// --------------------------------------------
type AudioURLRequest struct {
	AudioURL string `json:"audio_url" binding:"required"`
	Syllabus string `json:"syllabus"`
}

// --------------------------------------------
// Response envelopes
// --------------------------------------------
type SuccessResponse struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      *PipelineResult `json:"data"`
}

type ErrorResponse struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
	Detail    string    `json:"detail,omitempty"`
}
