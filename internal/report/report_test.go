package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gradeagent/gradeagent/internal/models"
)

func sampleResults() []models.GradingResult {
	return []models.GradingResult{
		{
			StudentName:      "Smith",
			TotalScore:       88,
			MaxPossibleScore: 100,
			Percentage:       88.0,
			LetterGrade:      "B+",
			Feedback:         "Solid work",
			Strengths:        []string{"Clear thesis", "Good sources"},
			Improvements:     []string{"Tighter conclusion"},
			Confidence:       0.95,
			RawResponse:      map[string]any{"secret": "must not leak"},
		},
		{
			StudentName:      "Jones",
			FlaggedForReview: true,
			FlagReason:       "Grading error: PDF extraction failed",
			Error:            "PDF appears to be empty or contains only images/scans",
		},
		{
			StudentName:      "Lee",
			TotalScore:       72.5,
			MaxPossibleScore: 100,
			Percentage:       72.5,
			LetterGrade:      "C",
			Confidence:       0.6,
			FlaggedForReview: true,
			FlagReason:       "Low confidence score: 0.60",
		},
	}
}

func TestWriteGrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grades.csv")
	require.NoError(t, WriteGrades(path, sampleResults()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per result")

	require.Equal(t, []string{
		"Student Name", "Total Score", "Max Score", "Percentage",
		"Letter Grade", "Feedback", "Strengths", "Improvements", "Confidence",
	}, rows[0])

	require.Equal(t, []string{"Smith", "88", "100", "88.0", "B+", "Solid work", "Clear thesis; Good sources", "Tighter conclusion", "0.95"}, rows[1])
	require.Equal(t, "72.50", rows[3][1], "fractional scores keep their decimals")
}

func TestWriteFlaggedSubsetInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flagged.csv")
	written, err := WriteFlagged(path, sampleResults())
	require.NoError(t, err)
	require.True(t, written)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus the two flagged results")
	require.Equal(t, "Jones", rows[1][0])
	require.Equal(t, "Lee", rows[2][0])
	require.Equal(t, "PDF appears to be empty or contains only images/scans", rows[1][8])
}

func TestWriteFlaggedOmittedWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flagged.csv")
	written, err := WriteFlagged(path, []models.GradingResult{
		{StudentName: "Smith", Confidence: 0.9},
	})
	require.NoError(t, err)
	require.False(t, written)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "no file is created when nothing is flagged")
}

func TestAuditLoggerOneParseableLinePerResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit_log.jsonl")
	audit := NewAuditLogger(path, "run-123")
	audit.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	for _, r := range sampleResults() {
		require.NoError(t, audit.Append(r))
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record), "every line parses independently")
		lines = append(lines, record)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 3)

	first := lines[0]
	require.Equal(t, "Smith", first["student_name"])
	require.Equal(t, "run-123", first["run_id"])
	require.Equal(t, float64(1), first["sequence"])
	require.NotContains(t, first, "raw_response", "raw model payload stays out of the audit log")
	require.NotContains(t, first, "secret")

	require.Equal(t, float64(3), lines[2]["sequence"])
	require.Equal(t, "Jones", lines[1]["student_name"])
	require.Equal(t, "PDF appears to be empty or contains only images/scans", lines[1]["error"])
}
