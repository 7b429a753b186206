package prompt

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gradeagent/gradeagent/pkg/ai"
)

// Smallest valid 1x1 PNG.
var pngFixture = mustDecodeBase64("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg==")

func mustDecodeBase64(s string) []byte {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return data
}

func writeRubricFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rubric.png")
	require.NoError(t, os.WriteFile(path, pngFixture, 0o644))
	return path
}

func TestEncodeRubricDetectsMediaType(t *testing.T) {
	rubric, err := EncodeRubric(writeRubricFixture(t))
	require.NoError(t, err)
	require.Equal(t, "image/png", rubric.MediaType)
	require.Equal(t, base64.StdEncoding.EncodeToString(pngFixture), rubric.Base64)
	require.True(t, strings.HasPrefix(rubric.DataURL(), "data:image/png;base64,"))
}

func TestEncodeRubricRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubric.png")
	require.NoError(t, os.WriteFile(path, []byte("just text, extension lies"), 0o644))

	_, err := EncodeRubric(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported rubric image type")
}

func TestEncodeRubricMissingFile(t *testing.T) {
	_, err := EncodeRubric(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestBuildBlockOrder(t *testing.T) {
	rubric, err := EncodeRubric(writeRubricFixture(t))
	require.NoError(t, err)

	system, blocks := Build("Smith", "My essay text.", rubric, "Grade harshly.")

	require.Contains(t, system, "Letter Grade Scale")
	require.Contains(t, system, "F: Below 57%")

	require.Len(t, blocks, 6)
	require.Equal(t, ai.BlockTypeText, blocks[0].Type)
	require.Contains(t, blocks[0].Text, "**Student Name:** Smith")
	require.Contains(t, blocks[1].Text, "## Rubric")
	require.Equal(t, ai.BlockTypeImage, blocks[2].Type)
	require.Equal(t, rubric.DataURL(), blocks[2].ImageURL)
	require.Contains(t, blocks[3].Text, "My essay text.")
	require.Contains(t, blocks[4].Text, "Grade harshly.")
	require.Contains(t, blocks[5].Text, "## Required Output")
}

func TestBuildWithoutExtraInstructions(t *testing.T) {
	rubric, err := EncodeRubric(writeRubricFixture(t))
	require.NoError(t, err)

	_, blocks := Build("Smith", "Text", rubric, "")
	require.Len(t, blocks, 5)
	require.Contains(t, blocks[4].Text, "## Required Output")
}

func TestBuildPassesSubmissionTextVerbatim(t *testing.T) {
	rubric, err := EncodeRubric(writeRubricFixture(t))
	require.NoError(t, err)

	long := strings.Repeat("paragraph. ", 10000)
	_, blocks := Build("Smith", long, rubric, "")
	require.Contains(t, blocks[3].Text, long)
}

func TestDryRunResponseMatchesOutputSchema(t *testing.T) {
	raw := DryRunResponse("Test Student")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.NoError(t, ValidateResponse(decoded))

	require.Equal(t, "Test Student", decoded["student_name"])
	require.Equal(t, 0.95, decoded["confidence"])
	require.Equal(t, "B+", decoded["letter_grade"])
	require.Equal(t, 88.0, decoded["percentage"])
}

func TestValidateResponseRejectsMissingFields(t *testing.T) {
	err := ValidateResponse(map[string]any{"student_name": "Smith"})
	require.Error(t, err)
}
