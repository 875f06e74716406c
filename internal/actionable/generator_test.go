package actionable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-insights-go/internal/aggregator"
	"lecture-insights-go/internal/types"
)

func TestGenerateFlagsWeakAreas(t *testing.T) {
	ins := aggregator.Insight{
		Overall: aggregator.Stats{Processed: 2, MeanScore: 72},
		ByTeacher: map[string]aggregator.Stats{
			"Ravi": {Processed: 1, MeanScore: 40, MeanMetrics: &types.ExtendedMetrics{
				ReviewRatio: 10, QuestionVelocity: 3, WaitTime: 1.5, TeacherTalkingTime: 92,
			}},
			"Asha": {Processed: 1, MeanScore: 85, MeanMetrics: &types.ExtendedMetrics{
				ReviewRatio: 12, QuestionVelocity: 3, WaitTime: 4, TeacherTalkingTime: 60,
			}},
		},
	}

	cards := Generate(ins)

	require.Len(t, cards, 3)
	for _, c := range cards {
		assert.Equal(t, "Ravi", c.Scope)
	}
	assert.Contains(t, cards[0].Insight, "Low mean pedagogical score")
	assert.Contains(t, cards[1].Insight, "wait time")
	assert.Contains(t, cards[2].Insight, "Teacher talk dominates")
}

func TestGenerateFallbackCard(t *testing.T) {
	cards := Generate(aggregator.Insight{Overall: aggregator.Stats{Processed: 1, MeanScore: 90}})
	require.Len(t, cards, 1)
	assert.Equal(t, "No strong pattern detected", cards[0].Insight)
}
