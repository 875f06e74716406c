package extractor

import "context"

// Mock returns canned replies keyed by Params.Name. Overrides replace the
// canned reply for a given name.
type Mock struct {
	Overrides map[string]string
}

func (m Mock) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if out, ok := m.Overrides[p.Name]; ok {
		return out, nil
	}

	switch p.Name {
	case ScoringParams.Name:
		return "```json\n{\"score\": 72, \"reasoning\": \"Regular questioning with short wait time. " +
			"Teacher talk dominates at roughly 80%. Natural code-switching supports comfort.\"}\n```", nil
	case MetricsParams.Name:
		return `{"review_ratio": 12, "question_velocity": 2.5, "wait_time": 2, ` +
			`"teacher_talking_time": 80, "hinglish_fluency": 70}`, nil
	default:
		return "The instructor asked about 2-3 questions per 10 minutes and paused briefly, around " +
			"2 seconds, before answering. Teacher talk made up roughly 80% of the session, so the class " +
			"read as mostly monologue with short student responses. Phrases like \"chalo start karte hain\" " +
			"and \"samajh mein aaya?\" showed comfortable Hindi-English code-switching.", nil
	}
}
