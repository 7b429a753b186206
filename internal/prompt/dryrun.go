package prompt

import "encoding/json"

// DryRunResponse synthesizes the deterministic mock grading payload used in
// dry-run mode. It is returned as a raw JSON document so dry runs exercise
// the exact decode/normalize path a live response takes.
func DryRunResponse(studentName string) string {
	mock := map[string]any{
		"student_name": studentName,
		"rubric_scores": []map[string]any{
			{
				"criterion":      "Content Quality",
				"max_points":     40,
				"awarded_points": 35,
				"justification":  "[DRY RUN] Mock score for testing",
			},
			{
				"criterion":      "Organization",
				"max_points":     30,
				"awarded_points": 25,
				"justification":  "[DRY RUN] Mock score for testing",
			},
			{
				"criterion":      "Writing Quality",
				"max_points":     30,
				"awarded_points": 28,
				"justification":  "[DRY RUN] Mock score for testing",
			},
		},
		"total_score":        88,
		"max_possible_score": 100,
		"percentage":         88.0,
		"letter_grade":       "B+",
		"feedback":           "[DRY RUN] This is a mock feedback response for testing the pipeline. No actual grading was performed.",
		"strengths": []string{
			"[DRY RUN] Mock strength 1",
			"[DRY RUN] Mock strength 2",
		},
		"improvements": []string{
			"[DRY RUN] Mock improvement 1",
			"[DRY RUN] Mock improvement 2",
		},
		"integrity_flag":   false,
		"integrity_reason": "",
		"confidence":       0.95,
	}

	data, err := json.Marshal(mock)
	if err != nil {
		// The mock is static apart from the student name; marshalling it
		// cannot fail at runtime.
		panic(err)
	}
	return string(data)
}
