package dataset

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"lecture-insights-go/internal/actionable"
	"lecture-insights-go/internal/aggregator"
	"lecture-insights-go/internal/types"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var resultsHeader = []any{
	"Lecture ID", "Teacher", "Subject", "Audio", "Status", "Score", "Reasoning",
	"Review Ratio", "Question Velocity", "Wait Time", "Teacher Talking Time", "Hinglish Fluency",
	"Duration (ms)", "Error",
}

// WriteReport writes per-lecture results and the aggregate summary to an
// xlsx file at path.
func WriteReport(path string, results []types.BatchResult, ins aggregator.Insight, cards []actionable.ActionCard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, resultsSheet, 1, resultsHeader); err != nil {
		return err
	}
	for i, r := range results {
		if err := writeRow(f, resultsSheet, i+2, resultRow(r)); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, ins, cards); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func resultRow(r types.BatchResult) []any {
	row := []any{r.LectureID, r.Teacher, r.Subject, r.AudioRef}
	if !r.OK() {
		row = append(row, "failed", "", "", "", "", "", "", "")
		return append(row, r.DurationMs, r.Error)
	}
	row = append(row, "ok", r.Result.PedagogicalScore, r.Result.ScoreReasoning)
	if m := r.Result.ExtendedMetrics; m != nil {
		row = append(row, m.ReviewRatio, m.QuestionVelocity, m.WaitTime, m.TeacherTalkingTime, m.HinglishFluency)
	} else {
		row = append(row, "", "", "", "", "")
	}
	return append(row, r.DurationMs, "")
}

func writeSummary(f *excelize.File, ins aggregator.Insight, cards []actionable.ActionCard) error {
	rows := [][]any{
		{"Scope", "Processed", "Failed", "Mean Score", "0-39", "40-59", "60-79", "80-100",
			"Mean Review Ratio", "Mean Question Velocity", "Mean Wait Time", "Mean Teacher Talking Time", "Mean Hinglish Fluency"},
		statsRow("overall", ins.Overall),
	}

	teachers := make([]string, 0, len(ins.ByTeacher))
	for t := range ins.ByTeacher {
		teachers = append(teachers, t)
	}
	sort.Strings(teachers)
	for _, t := range teachers {
		rows = append(rows, statsRow(t, ins.ByTeacher[t]))
	}

	rows = append(rows, []any{}, []any{"Scope", "Insight", "Action", "Impact"})
	for _, c := range cards {
		rows = append(rows, []any{c.Scope, c.Insight, c.Action, c.Impact})
	}

	for i, r := range rows {
		if err := writeRow(f, summarySheet, i+1, r); err != nil {
			return err
		}
	}
	return nil
}

func statsRow(scope string, s aggregator.Stats) []any {
	row := []any{scope, s.Processed, s.Failed, s.MeanScore}
	for _, band := range aggregator.ScoreBands {
		row = append(row, s.ScoreBands[band])
	}
	if m := s.MeanMetrics; m != nil {
		row = append(row, m.ReviewRatio, m.QuestionVelocity, m.WaitTime, m.TeacherTalkingTime, m.HinglishFluency)
	}
	return row
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, addr, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
