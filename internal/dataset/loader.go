package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"lecture-insights-go/internal/types"
)

type columns struct {
	id, audio, syllabus, teacher, subject int
}

// detectColumns maps header cells to fields by keyword. The first matching
// column wins for each field.
func detectColumns(header []string) columns {
	c := columns{id: -1, audio: -1, syllabus: -1, teacher: -1, subject: -1}
	set := func(idx *int, i int) {
		if *idx == -1 {
			*idx = i
		}
	}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "syllabus") || strings.Contains(l, "curriculum"):
			set(&c.syllabus, i)
		case strings.Contains(l, "teacher") || strings.Contains(l, "faculty") || strings.Contains(l, "instructor"):
			set(&c.teacher, i)
		case strings.Contains(l, "subject") || strings.Contains(l, "course"):
			set(&c.subject, i)
		case strings.Contains(l, "audio") || strings.Contains(l, "recording") || strings.Contains(l, "url") ||
			strings.Contains(l, "link") || strings.Contains(l, "path") || strings.Contains(l, "file"):
			set(&c.audio, i)
		case strings.Contains(l, "lecture id") || strings.Contains(l, "lectureid") || strings.Contains(l, "id"):
			set(&c.id, i)
		}
	}
	return c
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// LoadManifest reads lecture rows from the first sheet of an xlsx file.
// Rows without an audio reference are skipped.
func LoadManifest(path string) ([]types.LectureRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	cols := detectColumns(rows[0])
	if cols.audio == -1 {
		return nil, fmt.Errorf("no audio column found in header %q", rows[0])
	}

	var out []types.LectureRecord
	for i, r := range rows[1:] {
		rec := types.LectureRecord{
			LectureID: cell(r, cols.id),
			Teacher:   cell(r, cols.teacher),
			Subject:   cell(r, cols.subject),
			AudioRef:  cell(r, cols.audio),
			Syllabus:  cell(r, cols.syllabus),
		}
		if rec.AudioRef == "" {
			continue
		}
		if rec.LectureID == "" {
			rec.LectureID = fmt.Sprintf("row-%d", i+2)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no rows with an audio reference")
	}
	return out, nil
}
