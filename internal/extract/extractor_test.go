package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gradeagent/gradeagent/internal/models"
)

func TestStudentNameFromFilename(t *testing.T) {
	cases := map[string]string{
		"smith.pdf":        "Smith",
		"johnson.pdf":      "Johnson",
		"van_der_berg.pdf": "Van Der Berg",
		"garcia-lopez.pdf": "Garcia Lopez",
		"O_MALLEY.pdf":     "O Malley",
	}

	for filename, want := range cases {
		require.Equal(t, want, StudentNameFromFilename(filename), "filename %q", filename)
	}
}

func TestExtractAllMissingDirectory(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	_, err := e.ExtractAll(filepath.Join(t.TempDir(), "does-not-exist"))
	require.ErrorIs(t, err, ErrMissingDirectory)
}

func TestExtractAllEmptyDirectory(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a submission"), 0o644))

	_, err := e.ExtractAll(dir)
	require.ErrorIs(t, err, ErrNoSubmissions)
}

func TestExtractAllCorruptFileIsNonFatal(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jones.pdf"), []byte("not a real pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "smith.pdf"), []byte("also not a real pdf"), 0o644))

	submissions, err := e.ExtractAll(dir)
	require.NoError(t, err)
	require.Len(t, submissions, 2)

	// Lexicographic order by filename.
	require.Equal(t, "Jones", submissions[0].StudentName)
	require.Equal(t, "Smith", submissions[1].StudentName)

	for _, s := range submissions {
		require.False(t, s.ExtractionSuccess)
		require.NotEmpty(t, s.ErrorMessage)
		require.Empty(t, s.TextContent)
	}
}

func TestSummarize(t *testing.T) {
	submissions := []models.Submission{
		{StudentName: "Smith", ExtractionSuccess: true},
		{StudentName: "Jones", ExtractionSuccess: false, ErrorMessage: "PDF appears to be empty or contains only images/scans"},
		{StudentName: "Lee", ExtractionSuccess: true},
	}

	summary := Summarize(submissions)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 2, summary.Successful)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, []string{"Jones"}, summary.FailedNames)
	require.Equal(t, []string{"PDF appears to be empty or contains only images/scans"}, summary.FailedReasons)
}
