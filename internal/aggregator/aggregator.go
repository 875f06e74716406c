package aggregator

import (
	"math"

	"lecture-insights-go/internal/types"
)

// ScoreBands are the score histogram buckets, in report order.
var ScoreBands = []string{"0-39", "40-59", "60-79", "80-100"}

type Stats struct {
	Processed   int                    `json:"processed"`
	Failed      int                    `json:"failed"`
	MeanScore   float64                `json:"mean_score"`
	ScoreBands  map[string]int         `json:"score_bands"`
	MeanMetrics *types.ExtendedMetrics `json:"mean_metrics,omitempty"`
}

type Insight struct {
	Overall   Stats            `json:"overall"`
	ByTeacher map[string]Stats `json:"by_teacher"`
}

type accumulator struct {
	processed, failed int
	scoreSum          int
	bands             map[string]int
	metrics           types.ExtendedMetrics
	metricsCount      int
}

func (a *accumulator) add(r types.BatchResult) {
	if !r.OK() {
		a.failed++
		return
	}
	a.processed++
	a.scoreSum += r.Result.PedagogicalScore
	a.bands[band(r.Result.PedagogicalScore)]++
	if m := r.Result.ExtendedMetrics; m != nil {
		a.metricsCount++
		a.metrics.ReviewRatio += m.ReviewRatio
		a.metrics.QuestionVelocity += m.QuestionVelocity
		a.metrics.WaitTime += m.WaitTime
		a.metrics.TeacherTalkingTime += m.TeacherTalkingTime
		a.metrics.HinglishFluency += m.HinglishFluency
	}
}

func (a *accumulator) stats() Stats {
	s := Stats{Processed: a.processed, Failed: a.failed, ScoreBands: a.bands}
	if a.processed > 0 {
		s.MeanScore = round2(float64(a.scoreSum) / float64(a.processed))
	}
	if a.metricsCount > 0 {
		n := float64(a.metricsCount)
		s.MeanMetrics = &types.ExtendedMetrics{
			ReviewRatio:        round2(a.metrics.ReviewRatio / n),
			QuestionVelocity:   round2(a.metrics.QuestionVelocity / n),
			WaitTime:           round2(a.metrics.WaitTime / n),
			TeacherTalkingTime: round2(a.metrics.TeacherTalkingTime / n),
			HinglishFluency:    round2(a.metrics.HinglishFluency / n),
		}
	}
	return s
}

func newAccumulator() *accumulator {
	bands := make(map[string]int, len(ScoreBands))
	for _, b := range ScoreBands {
		bands[b] = 0
	}
	return &accumulator{bands: bands}
}

// Aggregate summarises batch results overall and per teacher. Lectures
// without a teacher are only counted overall.
func Aggregate(results []types.BatchResult) Insight {
	overall := newAccumulator()
	perTeacher := map[string]*accumulator{}
	for _, r := range results {
		overall.add(r)
		if r.Teacher == "" {
			continue
		}
		acc, ok := perTeacher[r.Teacher]
		if !ok {
			acc = newAccumulator()
			perTeacher[r.Teacher] = acc
		}
		acc.add(r)
	}

	byTeacher := make(map[string]Stats, len(perTeacher))
	for t, acc := range perTeacher {
		byTeacher[t] = acc.stats()
	}
	return Insight{Overall: overall.stats(), ByTeacher: byTeacher}
}

func band(score int) string {
	switch {
	case score < 40:
		return ScoreBands[0]
	case score < 60:
		return ScoreBands[1]
	case score < 80:
		return ScoreBands[2]
	default:
		return ScoreBands[3]
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
