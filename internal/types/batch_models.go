package types

// LectureRecord is one row of a batch manifest.
type LectureRecord struct {
	LectureID string `json:"lecture_id"`
	Teacher   string `json:"teacher,omitempty"`
	Subject   string `json:"subject,omitempty"`
	AudioRef  string `json:"audio_ref"` // local path or http(s) URL
	Syllabus  string `json:"syllabus,omitempty"`
}

// BatchResult pairs a manifest row with its outcome. Exactly one of Result
// and Error is set.
type BatchResult struct {
	LectureRecord
	Result     *PipelineResult `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMs int64           `json:"duration_ms"`
}

func (r BatchResult) OK() bool { return r.Result != nil }
