package actionable

import (
	"fmt"
	"sort"

	"lecture-insights-go/internal/aggregator"
)

type ActionCard struct {
	Scope   string `json:"scope"`
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Coaching thresholds on the mean extended metrics.
const (
	minWaitTime         = 3.0  // seconds
	minQuestionVelocity = 2.0  // per 10 minutes
	maxTeacherTalk      = 80.0 // percent
	minReviewRatio      = 5.0  // percent
	lowScore            = 50.0
)

// Generate turns aggregate statistics into coaching cards, overall first and
// then per teacher in name order. It always returns at least one card.
func Generate(ins aggregator.Insight) []ActionCard {
	cards := cardsFor("overall", ins.Overall)

	teachers := make([]string, 0, len(ins.ByTeacher))
	for t := range ins.ByTeacher {
		teachers = append(teachers, t)
	}
	sort.Strings(teachers)
	for _, t := range teachers {
		cards = append(cards, cardsFor(t, ins.ByTeacher[t])...)
	}

	if len(cards) == 0 {
		return []ActionCard{{
			Scope:   "overall",
			Insight: "No strong pattern detected",
			Action:  "Monitor and collect more lectures",
			Impact:  "Low immediate intervention",
		}}
	}
	return cards
}

func cardsFor(scope string, s aggregator.Stats) []ActionCard {
	var cards []ActionCard
	if s.Processed > 0 && s.MeanScore < lowScore {
		cards = append(cards, ActionCard{
			Scope:   scope,
			Insight: fmt.Sprintf("Low mean pedagogical score (%.0f)", s.MeanScore),
			Action:  "Schedule a peer observation and a coaching session on interactive techniques",
			Impact:  "Raise baseline teaching quality",
		})
	}

	m := s.MeanMetrics
	if m == nil {
		return cards
	}
	if m.QuestionVelocity < minQuestionVelocity {
		cards = append(cards, ActionCard{
			Scope:   scope,
			Insight: fmt.Sprintf("Few questions asked (%.1f per 10 min)", m.QuestionVelocity),
			Action:  "Plan 2-4 check-for-understanding questions per 10 minutes",
			Impact:  "More active recall and earlier detection of confusion",
		})
	}
	if m.WaitTime < minWaitTime {
		cards = append(cards, ActionCard{
			Scope:   scope,
			Insight: fmt.Sprintf("Short wait time after questions (%.1fs)", m.WaitTime),
			Action:  "Pause at least 3 seconds before taking or giving an answer",
			Impact:  "More students attempt answers",
		})
	}
	if m.TeacherTalkingTime > maxTeacherTalk {
		cards = append(cards, ActionCard{
			Scope:   scope,
			Insight: fmt.Sprintf("Teacher talk dominates (%.0f%%)", m.TeacherTalkingTime),
			Action:  "Add pair discussion or student explanation segments",
			Impact:  "Higher student participation",
		})
	}
	if m.ReviewRatio < minReviewRatio {
		cards = append(cards, ActionCard{
			Scope:   scope,
			Insight: fmt.Sprintf("Little time spent on review (%.0f%%)", m.ReviewRatio),
			Action:  "Open with a short recap of the previous lecture",
			Impact:  "Better retention across lectures",
		})
	}
	return cards
}
