package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/gradeagent/gradeagent/internal/models"
)

// ErrMissingDirectory indicates the submissions directory does not exist.
var ErrMissingDirectory = errors.New("submissions directory not found")

// ErrNoSubmissions indicates the directory contains no PDF files.
var ErrNoSubmissions = errors.New("no PDF files found")

// Extractor resolves a directory of student PDFs into submission records.
type Extractor interface {
	ExtractAll(dir string) ([]models.Submission, error)
	ExtractFile(path string) models.Submission
}

type extractor struct {
	logger zerolog.Logger
}

// NewExtractor constructs a PDF submission extractor.
func NewExtractor(logger zerolog.Logger) Extractor {
	return &extractor{
		logger: logger.With().Str("component", "extractor").Logger(),
	}
}

// ExtractAll processes every *.pdf file in dir, ordered lexicographically by
// filename so repeated runs over the same directory are reproducible. A
// missing directory or an empty one is fatal; a file that cannot be read is
// captured as a failed submission and the scan continues.
func (e *extractor) ExtractAll(dir string) ([]models.Submission, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read submissions directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in: %s", ErrNoSubmissions, dir)
	}

	submissions := make([]models.Submission, 0, len(paths))
	for _, path := range paths {
		submission := e.ExtractFile(path)
		if !submission.ExtractionSuccess {
			e.logger.Warn().
				Str("file", filepath.Base(path)).
				Str("reason", submission.ErrorMessage).
				Msg("extraction failed")
		}
		submissions = append(submissions, submission)
	}

	return submissions, nil
}

// ExtractFile processes a single PDF. Failures are never returned as errors;
// they are recorded on the submission so the run can continue.
func (e *extractor) ExtractFile(path string) models.Submission {
	studentName := StudentNameFromFilename(filepath.Base(path))

	text, pageCount, err := extractText(path)
	if err != nil {
		return models.Submission{
			StudentName:  studentName,
			FilePath:     path,
			ErrorMessage: err.Error(),
		}
	}

	if strings.TrimSpace(text) == "" {
		return models.Submission{
			StudentName:  studentName,
			FilePath:     path,
			PageCount:    pageCount,
			ErrorMessage: "PDF appears to be empty or contains only images/scans",
		}
	}

	return models.Submission{
		StudentName:       studentName,
		FilePath:          path,
		TextContent:       text,
		PageCount:         pageCount,
		ExtractionSuccess: true,
	}
}

// extractText pulls plain text from every page, demarcated per page. The pdf
// package panics on some malformed cross-reference tables, so the panic is
// converted into an ordinary extraction error.
func extractText(path string) (text string, pageCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unreadable PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	pageCount = reader.NumPage()

	var parts []string
	for n := 1; n <= pageCount; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", pageCount, fmt.Errorf("extract page %d: %w", n, err)
		}
		if strings.TrimSpace(pageText) != "" {
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", n, pageText))
		}
	}

	return strings.Join(parts, "\n\n"), pageCount, nil
}

// StudentNameFromFilename derives a display name from a filename stem:
// separators become spaces and each word is title-cased. This is a display
// heuristic only; two files can map to the same name.
func StudentNameFromFilename(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")

	words := strings.Fields(stem)
	for i, word := range words {
		runes := []rune(word)
		words[i] = strings.ToUpper(string(runes[:1])) + strings.ToLower(string(runes[1:]))
	}
	return strings.Join(words, " ")
}

// Summarize computes aggregate extraction statistics for pre-run reporting.
func Summarize(submissions []models.Submission) models.SubmissionSummary {
	summary := models.SubmissionSummary{Total: len(submissions)}
	for _, s := range submissions {
		if s.ExtractionSuccess {
			summary.Successful++
			continue
		}
		summary.Failed++
		summary.FailedNames = append(summary.FailedNames, s.StudentName)
		summary.FailedReasons = append(summary.FailedReasons, s.ErrorMessage)
	}
	return summary
}
