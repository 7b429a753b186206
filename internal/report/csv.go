package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/gradeagent/gradeagent/internal/models"
)

const listDelimiter = "; "

// WriteGrades serializes every result to a CSV grade report, one row per
// submission in processing order.
func WriteGrades(path string, results []models.GradingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create grades report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"Student Name", "Total Score", "Max Score", "Percentage",
		"Letter Grade", "Feedback", "Strengths", "Improvements", "Confidence",
	}); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.StudentName,
			formatScore(r.TotalScore),
			formatScore(r.MaxPossibleScore),
			fmt.Sprintf("%.1f", r.Percentage),
			r.LetterGrade,
			r.Feedback,
			strings.Join(r.Strengths, listDelimiter),
			strings.Join(r.Improvements, listDelimiter),
			fmt.Sprintf("%.2f", r.Confidence),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteFlagged serializes the subset of results flagged for review,
// preserving input order. When nothing is flagged, no file is created and
// written is false.
func WriteFlagged(path string, results []models.GradingResult) (written bool, err error) {
	var flagged []models.GradingResult
	for _, r := range results {
		if r.FlaggedForReview {
			flagged = append(flagged, r)
		}
	}
	if len(flagged) == 0 {
		return false, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("create flagged report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"Student Name", "Total Score", "Letter Grade", "Feedback",
		"Flag Reason", "Integrity Flag", "Integrity Reason", "Confidence", "Error",
	}); err != nil {
		return false, err
	}

	for _, r := range flagged {
		row := []string{
			r.StudentName,
			formatScore(r.TotalScore),
			r.LetterGrade,
			r.Feedback,
			r.FlagReason,
			fmt.Sprintf("%t", r.IntegrityFlag),
			r.IntegrityReason,
			fmt.Sprintf("%.2f", r.Confidence),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return false, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return false, err
	}
	return true, nil
}

// formatScore renders scores without trailing zeros (88 rather than 88.00)
// while keeping fractional points intact.
func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
