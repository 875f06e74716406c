package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-insights-go/internal/types"
)

func ok(teacher string, score int, m *types.ExtendedMetrics) types.BatchResult {
	return types.BatchResult{
		LectureRecord: types.LectureRecord{Teacher: teacher},
		Result:        &types.PipelineResult{PedagogicalScore: score, ExtendedMetrics: m},
	}
}

func failed(teacher string) types.BatchResult {
	return types.BatchResult{LectureRecord: types.LectureRecord{Teacher: teacher}, Error: "boom"}
}

func TestAggregate(t *testing.T) {
	results := []types.BatchResult{
		ok("Asha", 70, &types.ExtendedMetrics{WaitTime: 2, QuestionVelocity: 3, TeacherTalkingTime: 90}),
		ok("Asha", 45, &types.ExtendedMetrics{WaitTime: 4, QuestionVelocity: 1, TeacherTalkingTime: 70}),
		ok("Ravi", 85, nil),
		failed("Ravi"),
		ok("", 30, nil),
	}

	ins := Aggregate(results)

	assert.Equal(t, 4, ins.Overall.Processed)
	assert.Equal(t, 1, ins.Overall.Failed)
	assert.Equal(t, 57.5, ins.Overall.MeanScore)
	assert.Equal(t, map[string]int{"0-39": 1, "40-59": 1, "60-79": 1, "80-100": 1}, ins.Overall.ScoreBands)

	require.Len(t, ins.ByTeacher, 2)
	asha := ins.ByTeacher["Asha"]
	assert.Equal(t, 57.5, asha.MeanScore)
	require.NotNil(t, asha.MeanMetrics)
	assert.Equal(t, 3.0, asha.MeanMetrics.WaitTime)
	assert.Equal(t, 80.0, asha.MeanMetrics.TeacherTalkingTime)

	ravi := ins.ByTeacher["Ravi"]
	assert.Equal(t, 1, ravi.Processed)
	assert.Equal(t, 1, ravi.Failed)
	assert.Nil(t, ravi.MeanMetrics)
}

func TestAggregateEmpty(t *testing.T) {
	ins := Aggregate(nil)
	assert.Zero(t, ins.Overall.Processed)
	assert.Zero(t, ins.Overall.MeanScore)
	assert.Empty(t, ins.ByTeacher)
}
