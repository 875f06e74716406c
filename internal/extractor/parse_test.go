package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/types"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     types.Score
		fallback bool
	}{
		{
			name: "fenced json",
			raw:  "```json\n{\"score\": 68, \"reasoning\": \"Covered 3 of 5 topics.\"}\n```",
			want: types.Score{Score: 68, Reasoning: "Covered 3 of 5 topics."},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"score\": 45, \"reasoning\": \"Lecture only.\"}\n```",
			want: types.Score{Score: 45, Reasoning: "Lecture only."},
		},
		{
			name: "json wrapped in prose",
			raw:  "Here you go: {\"score\": 81, \"reasoning\": \"Uses {braces} in text\"} thanks",
			want: types.Score{Score: 81, Reasoning: "Uses {braces} in text"},
		},
		{
			name: "fractional score rounds",
			raw:  `{"score": 72.6, "reasoning": "ok"}`,
			want: types.Score{Score: 73, Reasoning: "ok"},
		},
		{
			name: "out of range clamps",
			raw:  `{"score": 140, "reasoning": "generous"}`,
			want: types.Score{Score: 100, Reasoning: "generous"},
		},
		{
			name: "huge score clamps high",
			raw:  `{"score": 1e20, "reasoning": "r"}`,
			want: types.Score{Score: 100, Reasoning: "r"},
		},
		{
			name: "negative score clamps low",
			raw:  `{"score": -1e20, "reasoning": "r"}`,
			want: types.Score{Score: 0, Reasoning: "r"},
		},
		{
			name:     "first integer fallback",
			raw:      "the final grade is 45 points",
			want:     types.Score{Score: 45, Reasoning: "Score extracted from response"},
			fallback: true,
		},
		{
			name:     "fallback clamps",
			raw:      "I would give this 250 out of 100",
			want:     types.Score{Score: 100, Reasoning: "Score extracted from response"},
			fallback: true,
		},
		{
			name:     "missing score field",
			raw:      `{"reasoning": "forgot"}`,
			want:     types.Score{Score: 50, Reasoning: "unable to generate score"},
			fallback: true,
		},
		{
			name:     "no digits",
			raw:      "I cannot score this lecture.",
			want:     types.Score{Score: 50, Reasoning: "unable to generate score"},
			fallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore(tt.raw)
			assert.Equal(t, tt.want, got)
			if tt.fallback {
				var perr *apperr.ParseError
				assert.ErrorAs(t, err, &perr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseExtendedMetricsClamps(t *testing.T) {
	raw := "```json\n{\"review_ratio\": 150, \"question_velocity\": 20, \"wait_time\": -3, " +
		"\"teacher_talking_time\": 70, \"hinglish_fluency\": 55}\n```"

	got, err := ParseExtendedMetrics(raw)
	require.NoError(t, err)
	assert.Equal(t, types.ExtendedMetrics{
		ReviewRatio:        100,
		QuestionVelocity:   15,
		WaitTime:           0,
		TeacherTalkingTime: 70,
		HinglishFluency:    55,
	}, got)
}

func TestParseExtendedMetricsRejectsGarbage(t *testing.T) {
	_, err := ParseExtendedMetrics("no numbers for you")
	var perr *apperr.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSON(`noise {"a": {"b": 1}} trailing }`))
	assert.Equal(t, `{"s": "}"}`, extractJSON(`{"s": "}"}`))
	assert.Empty(t, extractJSON("no object"))
	assert.Empty(t, extractJSON(`{"open": `))
}
