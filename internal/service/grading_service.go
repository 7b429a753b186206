package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradeagent/gradeagent/internal/models"
	"github.com/gradeagent/gradeagent/internal/prompt"
	"github.com/gradeagent/gradeagent/pkg/ai"
)

// GradingConfig describes the grading agent's knobs. The configuration is
// constructed once at startup and passed in; the agent performs no ambient
// environment lookups.
type GradingConfig struct {
	ConfidenceThreshold float64
	MaxRetries          int
	DryRun              bool
}

// GradingService grades one submission at a time. Degraded outcomes
// (extraction failures, exhausted retries, unparseable responses) are
// returned as flagged results, never as errors; one bad submission must not
// stop a run.
type GradingService interface {
	GradeSubmission(ctx context.Context, submission models.Submission, rubricPath, extraInstructions string) models.GradingResult
}

type gradingService struct {
	grader ai.Grader
	cfg    GradingConfig
	logger zerolog.Logger
	sleep  func(time.Duration)
}

// NewGradingService constructs the grading agent.
func NewGradingService(grader ai.Grader, cfg GradingConfig, logger zerolog.Logger) GradingService {
	return &gradingService{
		grader: grader,
		cfg:    cfg,
		logger: logger.With().Str("component", "grading_service").Logger(),
		sleep:  time.Sleep,
	}
}

func (s *gradingService) GradeSubmission(ctx context.Context, submission models.Submission, rubricPath, extraInstructions string) models.GradingResult {
	// Extraction failures short-circuit to a zero-score flagged result.
	if !submission.ExtractionSuccess {
		return models.GradingResult{
			StudentName:      submission.StudentName,
			Strengths:        []string{},
			Improvements:     []string{},
			RubricScores:     []models.RubricScore{},
			FlaggedForReview: true,
			FlagReason:       fmt.Sprintf("PDF extraction failed: %s", submission.ErrorMessage),
			Error:            submission.ErrorMessage,
		}
	}

	// Dry-run mode synthesizes a deterministic mock response and runs it
	// through the same parse path as a live response. No network.
	if s.cfg.DryRun {
		result, err := s.parseContent(prompt.DryRunResponse(submission.StudentName), submission.StudentName)
		if err != nil {
			return s.errorResult(submission.StudentName, fmt.Sprintf("Failed to parse API response as JSON: %v", err))
		}
		return result
	}

	rubric, err := prompt.EncodeRubric(rubricPath)
	if err != nil {
		return s.errorResult(submission.StudentName, fmt.Sprintf("Failed to build grading request: %v", err))
	}

	systemPrompt, blocks := prompt.Build(submission.StudentName, submission.TextContent, rubric, extraInstructions)
	request := ai.GradingRequest{SystemPrompt: systemPrompt, Blocks: blocks}

	// Retry loop: malformed JSON bodies wait a fixed short delay, any other
	// call error backs off exponentially. All call errors are treated
	// identically; there is no retryable/permanent distinction here.
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		content, err := s.grader.Grade(ctx, request)
		if err != nil {
			if attempt == s.cfg.MaxRetries {
				return s.errorResult(submission.StudentName, fmt.Sprintf("API call failed: %v", err))
			}
			s.logger.Warn().Err(err).
				Str("student", submission.StudentName).
				Int("attempt", attempt+1).
				Msg("grading call failed, retrying")
			s.sleep(time.Duration(1<<attempt) * time.Second)
			continue
		}

		result, err := s.parseContent(content, submission.StudentName)
		if err != nil {
			if attempt == s.cfg.MaxRetries {
				return s.errorResult(submission.StudentName, fmt.Sprintf("Failed to parse API response as JSON: %v", err))
			}
			s.logger.Warn().Err(err).
				Str("student", submission.StudentName).
				Int("attempt", attempt+1).
				Msg("malformed JSON response, retrying")
			s.sleep(time.Second)
			continue
		}

		return result
	}

	// Unreachable with a non-negative retry budget.
	return s.errorResult(submission.StudentName, "API call failed: retries exhausted")
}

// gradingPayload is the typed shape of the model's JSON response. Optional
// fields are pointers so absent and zero values can be told apart during
// normalization.
type gradingPayload struct {
	StudentName      *string              `json:"student_name"`
	RubricScores     []models.RubricScore `json:"rubric_scores"`
	TotalScore       *float64             `json:"total_score"`
	MaxPossibleScore *float64             `json:"max_possible_score"`
	Percentage       *float64             `json:"percentage"`
	LetterGrade      *string              `json:"letter_grade"`
	Feedback         *string              `json:"feedback"`
	Strengths        []string             `json:"strengths"`
	Improvements     []string             `json:"improvements"`
	IntegrityFlag    *bool                `json:"integrity_flag"`
	IntegrityReason  *string              `json:"integrity_reason"`
	Confidence       *float64             `json:"confidence"`
}

// parseContent decodes and normalizes a raw response body. A returned error
// means the body is not valid JSON at all and the caller may retry; a body
// that is valid JSON but has the wrong field types produces a flagged error
// result without retrying, since the call itself already succeeded.
func (s *gradingService) parseContent(content, fallbackName string) (models.GradingResult, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return models.GradingResult{}, err
	}

	if err := prompt.ValidateResponse(raw); err != nil {
		s.logger.Warn().Err(err).
			Str("student", fallbackName).
			Msg("response deviates from grading output schema")
	}

	var payload gradingPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return s.errorResult(fallbackName, fmt.Sprintf("Failed to parse response: %v", err)), nil
	}

	return s.normalize(payload, raw, fallbackName), nil
}

// normalize produces a fully populated result from the typed payload,
// applying the documented defaults for absent fields, then makes the triage
// decision: low confidence first, integrity concern second.
func (s *gradingService) normalize(payload gradingPayload, raw map[string]any, fallbackName string) models.GradingResult {
	result := models.GradingResult{
		StudentName:      fallbackName,
		MaxPossibleScore: 100,
		Confidence:       0.5,
		Strengths:        []string{},
		Improvements:     []string{},
		RubricScores:     []models.RubricScore{},
		RawResponse:      raw,
	}

	if payload.StudentName != nil && *payload.StudentName != "" {
		result.StudentName = *payload.StudentName
	}
	if payload.TotalScore != nil {
		result.TotalScore = *payload.TotalScore
	}
	if payload.MaxPossibleScore != nil {
		result.MaxPossibleScore = *payload.MaxPossibleScore
	}
	if payload.Percentage != nil {
		result.Percentage = *payload.Percentage
	}
	if payload.LetterGrade != nil {
		result.LetterGrade = *payload.LetterGrade
	}
	if payload.Feedback != nil {
		result.Feedback = *payload.Feedback
	}
	if payload.Strengths != nil {
		result.Strengths = payload.Strengths
	}
	if payload.Improvements != nil {
		result.Improvements = payload.Improvements
	}
	if payload.RubricScores != nil {
		result.RubricScores = payload.RubricScores
	}
	if payload.IntegrityFlag != nil {
		result.IntegrityFlag = *payload.IntegrityFlag
	}
	if payload.IntegrityReason != nil {
		result.IntegrityReason = *payload.IntegrityReason
	}
	if payload.Confidence != nil {
		result.Confidence = *payload.Confidence
	}

	// Scores and percentages are reported by the model and trusted as-is;
	// no local arithmetic checks are applied.
	if result.Confidence < s.cfg.ConfidenceThreshold {
		result.FlaggedForReview = true
		result.FlagReason = fmt.Sprintf("Low confidence score: %.2f", result.Confidence)
	} else if result.IntegrityFlag {
		result.FlaggedForReview = true
		result.FlagReason = fmt.Sprintf("Academic integrity concern: %s", result.IntegrityReason)
	}

	return result
}

func (s *gradingService) errorResult(studentName, message string) models.GradingResult {
	return models.GradingResult{
		StudentName:      studentName,
		Strengths:        []string{},
		Improvements:     []string{},
		RubricScores:     []models.RubricScore{},
		FlaggedForReview: true,
		FlagReason:       fmt.Sprintf("Grading error: %s", message),
		Error:            message,
	}
}
