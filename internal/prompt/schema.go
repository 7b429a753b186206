package prompt

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// gradingOutputSchema is the contract for the model's JSON output. Parsing is
// defaults-based rather than strict, so the schema is used to detect drift
// (see ValidateResponse), not to reject responses.
const gradingOutputSchema = `{
  "type": "object",
  "properties": {
    "student_name": {
      "type": "string",
      "description": "The student's name from the submission"
    },
    "rubric_scores": {
      "type": "array",
      "description": "Scores for each rubric criterion",
      "items": {
        "type": "object",
        "properties": {
          "criterion": {"type": "string", "description": "Name of the rubric criterion"},
          "max_points": {"type": "number", "description": "Maximum possible points"},
          "awarded_points": {"type": "number", "description": "Points awarded"},
          "justification": {"type": "string", "description": "Brief justification for score"}
        },
        "required": ["criterion", "max_points", "awarded_points", "justification"]
      }
    },
    "total_score": {
      "type": "number",
      "description": "Total points awarded (sum of all criteria)"
    },
    "max_possible_score": {
      "type": "number",
      "description": "Maximum possible total points"
    },
    "percentage": {
      "type": "number",
      "description": "Percentage score (0-100)"
    },
    "letter_grade": {
      "type": "string",
      "enum": ["A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "F"],
      "description": "Letter grade based on percentage"
    },
    "feedback": {
      "type": "string",
      "description": "Personalized feedback paragraph for the student (2-4 sentences)"
    },
    "strengths": {
      "type": "array",
      "items": {"type": "string"},
      "description": "List of 2-3 specific strengths in the submission"
    },
    "improvements": {
      "type": "array",
      "items": {"type": "string"},
      "description": "List of 2-3 specific areas for improvement"
    },
    "integrity_flag": {
      "type": "boolean",
      "description": "True if there are academic integrity concerns"
    },
    "integrity_reason": {
      "type": "string",
      "description": "Explanation of integrity concerns (only if flagged)"
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1,
      "description": "Confidence in the grading accuracy (0.0-1.0)"
    }
  },
  "required": [
    "student_name", "rubric_scores", "total_score", "max_possible_score",
    "percentage", "letter_grade", "feedback", "strengths", "improvements",
    "integrity_flag", "confidence"
  ]
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
)

func outputSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("grading_output.json", strings.NewReader(gradingOutputSchema)); err != nil {
			panic(err)
		}
		compiledSchema = compiler.MustCompile("grading_output.json")
	})
	return compiledSchema
}

// ValidateResponse checks a decoded model response against the grading output
// schema. A non-nil error means the model drifted from the contract; callers
// surface it as a warning rather than a failure, since the parser fills in
// defaults for missing fields.
func ValidateResponse(decoded any) error {
	return outputSchema().Validate(decoded)
}
