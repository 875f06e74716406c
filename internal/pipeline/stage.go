package pipeline

// Stage is where a run currently is. Failed is reachable from every
// non-terminal stage.
type Stage int

const (
	StageCreated Stage = iota
	StageTranscribing
	StageAnalyzing
	StageScoring
	StageCompleted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageTranscribing:
		return "transcribing"
	case StageAnalyzing:
		return "analyzing"
	case StageScoring:
		return "scoring"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s Stage) Terminal() bool { return s == StageCompleted || s == StageFailed }
