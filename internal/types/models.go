package types

// --------------------------------------------
// Pipeline output delivered to API clients
// --------------------------------------------
type PipelineResult struct {
	Analysis              string           `json:"analysis"`
	PedagogicalScore      int              `json:"pedagogical_score"` // 0–100
	ScoreReasoning        string           `json:"score_reasoning"`
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
	ExtendedMetrics       *ExtendedMetrics `json:"extended_metrics,omitempty"`
}

// Score is the decoded scoring payload.
type Score struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// ExtendedMetrics are best-effort numeric teaching indicators.
type ExtendedMetrics struct {
	ReviewRatio        float64 `json:"review_ratio"`         // 0–100, % of time recapping
	QuestionVelocity   float64 `json:"question_velocity"`    // 0–15, questions per 10 min
	WaitTime           float64 `json:"wait_time"`            // 0–10, seconds after a question
	TeacherTalkingTime float64 `json:"teacher_talking_time"` // 0–100, %
	HinglishFluency    float64 `json:"hinglish_fluency"`     // 0–100
}

// Clamp forces every field into its documented range.
func (m ExtendedMetrics) Clamp() ExtendedMetrics {
	return ExtendedMetrics{
		ReviewRatio:        clamp(m.ReviewRatio, 0, 100),
		QuestionVelocity:   clamp(m.QuestionVelocity, 0, 15),
		WaitTime:           clamp(m.WaitTime, 0, 10),
		TeacherTalkingTime: clamp(m.TeacherTalkingTime, 0, 100),
		HinglishFluency:    clamp(m.HinglishFluency, 0, 100),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	return min(max(v, lo), hi)
}

// ClampScore bounds a pedagogical score to 0–100.
func ClampScore(v int) int {
	return min(max(v, 0), 100)
}
