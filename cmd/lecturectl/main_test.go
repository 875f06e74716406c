package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lecture-insights-go/internal/types"
)

var mp3 = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 256)...)

func setupMockEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("USE_MOCK_TRANSCRIBE", "true")
	t.Setenv("USE_MOCK_LLM", "true")
	t.Setenv("TEMP_DIR", t.TempDir())
	t.Setenv("RETRY_INITIAL_DELAY", "1ms")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	dir := setupMockEnv(t)
	path := filepath.Join(dir, "lecture.mp3")
	require.NoError(t, os.WriteFile(path, mp3, 0o600))

	out, err := execute(t, "analyze", path, "--syllabus", "Unit 1")
	require.NoError(t, err)

	var res types.PipelineResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 72, res.PedagogicalScore)
	assert.NotNil(t, res.ExtendedMetrics)
}

func TestRunCommandWritesReport(t *testing.T) {
	dir := setupMockEnv(t)
	audio := filepath.Join(dir, "week1.mp3")
	require.NoError(t, os.WriteFile(audio, mp3, 0o600))

	f := excelize.NewFile()
	rows := [][]any{
		{"Lecture ID", "Teacher", "Audio Path"},
		{"L-1", "Asha", audio},
		{"L-2", "Ravi", filepath.Join(dir, "missing.mp3")},
	}
	for i, r := range rows {
		addr, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &r))
	}
	manifest := filepath.Join(dir, "manifest.xlsx")
	require.NoError(t, f.SaveAs(manifest))
	require.NoError(t, f.Close())
	report := filepath.Join(dir, "report.xlsx")

	out, err := execute(t, "run", "--manifest", manifest, "--out", report, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 2 lectures (1 failed)")
	assert.Contains(t, out, "Report written to")

	rf, err := excelize.OpenFile(report)
	require.NoError(t, err)
	defer rf.Close()
	results, err := rf.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "ok", results[1][4])
	assert.Equal(t, "failed", results[2][4])
}

func TestRunCommandRequiresManifest(t *testing.T) {
	setupMockEnv(t)
	_, err := execute(t, "run")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
