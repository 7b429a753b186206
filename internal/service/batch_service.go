package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradeagent/gradeagent/internal/models"
)

// AuditAppender records one graded result per line, durably, in processing
// order. Implemented by report.AuditLogger.
type AuditAppender interface {
	Append(result models.GradingResult) error
}

// BatchOptions parameterizes one grading pass.
type BatchOptions struct {
	Assignment        string `validate:"required"`
	RubricPath        string
	ExtraInstructions string
	RunID             string
	Offset            int           `validate:"gte=0"`
	BatchSize         int           `validate:"gte=1"`
	BatchDelay        time.Duration `validate:"gte=0"`
	InterCallDelay    time.Duration `validate:"gte=0"`
	DryRun            bool
}

// BatchService drives the grading agent over an ordered submission list in
// rate-limited batches. Processing is strictly sequential so external rate
// limits are respected and audit-log ordering stays deterministic.
type BatchService interface {
	Run(ctx context.Context, submissions []models.Submission, opts BatchOptions) ([]models.GradingResult, models.BatchSummary, error)
}

type batchService struct {
	grading   GradingService
	audit     AuditAppender
	validator *validator.Validate
	logger    zerolog.Logger
	sleep     func(time.Duration)
	now       func() time.Time
}

// NewBatchService constructs the batch orchestrator.
func NewBatchService(grading GradingService, audit AuditAppender, validate *validator.Validate, logger zerolog.Logger) BatchService {
	return &batchService{
		grading:   grading,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "batch_service").Logger(),
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Run grades submissions[opts.Offset:] in fixed-size batches. The configured
// delay is slept strictly between batches, never before the first or after
// the last; a smaller fixed delay separates individual calls inside a batch
// unless the run is a dry run. Each result is appended to the audit log
// immediately after grading, so a crash mid-run loses at most the in-flight
// result.
func (s *batchService) Run(ctx context.Context, submissions []models.Submission, opts BatchOptions) ([]models.GradingResult, models.BatchSummary, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = 20
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	if err := s.validator.Struct(opts); err != nil {
		return nil, models.BatchSummary{}, err
	}

	startedAt := s.now()

	pending := submissions
	if opts.Offset >= len(submissions) {
		pending = nil
	} else {
		pending = submissions[opts.Offset:]
	}

	logger := s.logger.With().
		Str("run_id", opts.RunID).
		Str("assignment", opts.Assignment).
		Logger()

	logger.Info().
		Int("total", len(submissions)).
		Int("pending", len(pending)).
		Int("offset", opts.Offset).
		Int("batch_size", opts.BatchSize).
		Bool("dry_run", opts.DryRun).
		Msg("starting grading run")

	results := make([]models.GradingResult, 0, len(pending))
	for start := 0; start < len(pending); start += opts.BatchSize {
		if start > 0 {
			logger.Debug().Dur("delay", opts.BatchDelay).Msg("pausing between batches")
			s.sleep(opts.BatchDelay)
		}

		end := start + opts.BatchSize
		if end > len(pending) {
			end = len(pending)
		}

		for i, submission := range pending[start:end] {
			if i > 0 && !opts.DryRun {
				s.sleep(opts.InterCallDelay)
			}

			result := s.grading.GradeSubmission(ctx, submission, opts.RubricPath, opts.ExtraInstructions)
			results = append(results, result)

			if err := s.audit.Append(result); err != nil {
				logger.Error().Err(err).
					Str("student", result.StudentName).
					Msg("failed to append audit record")
			}

			logger.Info().
				Str("student", result.StudentName).
				Float64("score", result.TotalScore).
				Float64("percentage", result.Percentage).
				Str("letter_grade", result.LetterGrade).
				Bool("flagged", result.FlaggedForReview).
				Int("graded", len(results)).
				Int("pending", len(pending)-len(results)).
				Msg("submission graded")
		}
	}

	summary := summarize(results, opts, startedAt, s.now())

	logger.Info().
		Int("successful", summary.Successful).
		Int("flagged", summary.Flagged).
		Int("errored", summary.Errored).
		Float64("mean_percentage", summary.MeanPercentage).
		Msg("grading run complete")

	return results, summary, nil
}

func summarize(results []models.GradingResult, opts BatchOptions, startedAt, finishedAt time.Time) models.BatchSummary {
	summary := models.BatchSummary{
		RunID:      opts.RunID,
		Assignment: opts.Assignment,
		Total:      len(results),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	var percentageSum float64
	for _, r := range results {
		if r.Errored() {
			summary.Errored++
		} else {
			summary.Successful++
			percentageSum += r.Percentage
		}
		if r.FlaggedForReview {
			summary.Flagged++
		}
	}

	if summary.Successful > 0 {
		summary.MeanPercentage = percentageSum / float64(summary.Successful)
	}

	return summary
}
