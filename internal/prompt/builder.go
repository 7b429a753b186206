package prompt

import (
	"fmt"

	"github.com/gradeagent/gradeagent/pkg/ai"
)

// systemPrompt is the fixed system-level instruction set: grading principles,
// academic-integrity criteria, confidence guidelines, and letter-grade bands.
const systemPrompt = `You are an expert teaching assistant grading student assignments. Your role is to:

1. **Analyze the rubric image** carefully to understand all grading criteria and point allocations
2. **Evaluate the student submission** against each rubric criterion
3. **Assign fair and consistent scores** with clear justifications
4. **Provide constructive feedback** that helps students learn and improve

## Grading Principles:
- Be FAIR and CONSISTENT - grade based solely on the rubric criteria
- Be SPECIFIC - reference actual content from the submission in your justifications
- Be CONSTRUCTIVE - feedback should help students understand how to improve
- Be ACCURATE - double-check your point calculations

## Academic Integrity:
Flag submissions if you notice:
- Text that appears copied from common sources without citation
- Inconsistent writing quality suggesting parts were not written by the student
- Suspiciously similar phrasing to known sources
- Any other red flags warranting instructor review

Do NOT flag for:
- Poor grammar or writing quality (this is a grading criterion, not integrity issue)
- Using course materials appropriately
- Common phrases or standard terminology

## Confidence Score Guidelines:
- 0.9-1.0: Clear submission, rubric criteria clearly met/not met
- 0.7-0.9: Some ambiguity but confident in assessment
- 0.5-0.7: Significant ambiguity, recommend human review
- Below 0.5: Unable to grade reliably, requires human review

## Letter Grade Scale:
A: 90-100% | A-: 87-89% | B+: 83-86% | B: 80-82% | B-: 77-79%
C+: 73-76% | C: 70-72% | C-: 67-69% | D+: 63-66% | D: 60-62% | D-: 57-59% | F: Below 57%
`

// outputReminder trails every request so the model returns the expected
// JSON shape even when the conversation context is long.
const outputReminder = `## Required Output

Provide your grading response as a JSON object with the following structure:
- rubric_scores: Array of {criterion, max_points, awarded_points, justification}
- total_score, max_possible_score, percentage
- letter_grade (A through F)
- feedback (2-4 sentences of personalized feedback)
- strengths (2-3 bullet points)
- improvements (2-3 bullet points)
- integrity_flag (true/false)
- integrity_reason (only if flagged)
- confidence (0.0-1.0)

Be thorough in analyzing the rubric and fair in your assessment.`

// Build composes the complete grading request: the fixed system prompt plus
// the ordered content blocks. The submission text is passed through verbatim;
// no truncation or chunking is applied.
func Build(studentName, submissionText string, rubric RubricImage, extraInstructions string) (string, []ai.ContentBlock) {
	blocks := []ai.ContentBlock{
		ai.TextBlock(fmt.Sprintf("## Grading Task\n\nPlease grade the following student submission using the rubric image provided.\n\n**Student Name:** %s", studentName)),
		ai.TextBlock("## Rubric\nAnalyze this rubric image to understand all grading criteria:"),
		ai.ImageBlock(rubric.DataURL()),
		ai.TextBlock(fmt.Sprintf("## Student Submission\n\n%s", submissionText)),
	}

	if extraInstructions != "" {
		blocks = append(blocks, ai.TextBlock(fmt.Sprintf("## Additional Grading Instructions\n\n%s", extraInstructions)))
	}

	blocks = append(blocks, ai.TextBlock(outputReminder))

	return systemPrompt, blocks
}
