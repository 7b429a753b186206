package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gradeagent/gradeagent/internal/config"
	"github.com/gradeagent/gradeagent/internal/extract"
	"github.com/gradeagent/gradeagent/internal/report"
	"github.com/gradeagent/gradeagent/internal/service"
	"github.com/gradeagent/gradeagent/pkg/ai"
)

var gradeFlags struct {
	assignment       string
	rubricPath       string
	submissionsDir   string
	instructionsPath string
	dryRun           bool
	batchSize        int
	offset           int
	batchDelay       time.Duration
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Run a full grading pass for an assignment",
	Long: `Grade every PDF submission in a directory against a rubric image.

The run writes three artifacts under <output-dir>/<assignment>/<timestamp>/:
  grades.csv              one row per submission
  flagged_for_review.csv  submissions needing human review (omitted when none)
  audit_log.jsonl         one privacy-filtered JSON record per submission

Use --dry-run to exercise the full pipeline with deterministic mock results
and no external calls. Use --offset to resume a partially completed run.`,
	RunE: runGrade,
}

func init() {
	f := gradeCmd.Flags()
	f.StringVar(&gradeFlags.assignment, "assignment", "", "Assignment name (required)")
	f.StringVar(&gradeFlags.rubricPath, "rubric", "", "Path to the rubric image (PNG/JPEG/GIF/WebP, required)")
	f.StringVar(&gradeFlags.submissionsDir, "submissions", "", "Directory of student PDF submissions (required)")
	f.StringVar(&gradeFlags.instructionsPath, "instructions", "", "Optional file with extra grading instructions")
	f.BoolVar(&gradeFlags.dryRun, "dry-run", false, "Run the pipeline with mock results, no external calls")
	f.IntVar(&gradeFlags.batchSize, "batch-size", 0, "Submissions per batch (default from settings, 20)")
	f.IntVar(&gradeFlags.offset, "offset", 0, "Skip this many submissions (resume a partial run)")
	f.DurationVar(&gradeFlags.batchDelay, "batch-delay", 0, "Pause between batches (default from settings, 5s)")
	_ = gradeCmd.MarkFlagRequired("assignment")
	_ = gradeCmd.MarkFlagRequired("rubric")
	_ = gradeCmd.MarkFlagRequired("submissions")
}

func runGrade(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(rootFlags.settingsFile)
	if err != nil {
		return err
	}

	// Flag overrides on top of settings.
	if gradeFlags.batchSize > 0 {
		cfg.BatchSize = gradeFlags.batchSize
	}
	if gradeFlags.batchDelay > 0 {
		cfg.BatchDelay = gradeFlags.batchDelay
	}

	// Fatal input checks happen before any grading begins.
	if _, err := os.Stat(gradeFlags.rubricPath); err != nil {
		return fmt.Errorf("rubric image not found: %s", gradeFlags.rubricPath)
	}

	extractor := extract.NewExtractor(logger)
	submissions, err := extractor.ExtractAll(gradeFlags.submissionsDir)
	if err != nil {
		return err
	}

	summary := extract.Summarize(submissions)
	logger.Info().
		Int("total", summary.Total).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Msg("submissions extracted")
	for i, name := range summary.FailedNames {
		logger.Warn().
			Str("student", name).
			Str("reason", summary.FailedReasons[i]).
			Msg("submission will be flagged without grading")
	}

	extraInstructions, err := loadInstructions(gradeFlags.instructionsPath)
	if err != nil {
		return err
	}

	var grader ai.Grader
	if gradeFlags.dryRun {
		logger.Info().Msg("dry run: no external calls will be made")
	} else {
		if issue := cfg.APIKeyIssue(); issue != "" {
			logger.Warn().Msg(issue)
		}
		grader, err = ai.NewOpenAIGrader(ai.OpenAIConfig{
			APIKey:      strings.TrimSpace(cfg.APIKey),
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxOutputTokens,
			Temperature: cfg.Temperature,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
	}

	runID := uuid.NewString()
	outDir := filepath.Join(cfg.OutputDir, gradeFlags.assignment, time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	audit := report.NewAuditLogger(filepath.Join(outDir, "audit_log.jsonl"), runID)
	validate := validator.New(validator.WithRequiredStructEnabled())

	gradingSvc := service.NewGradingService(grader, service.GradingConfig{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MaxRetries:          cfg.MaxRetries,
		DryRun:              gradeFlags.dryRun,
	}, logger)
	batchSvc := service.NewBatchService(gradingSvc, audit, validate, logger)

	results, runSummary, err := batchSvc.Run(context.Background(), submissions, service.BatchOptions{
		Assignment:        gradeFlags.assignment,
		RubricPath:        gradeFlags.rubricPath,
		ExtraInstructions: extraInstructions,
		RunID:             runID,
		Offset:            gradeFlags.offset,
		BatchSize:         cfg.BatchSize,
		BatchDelay:        cfg.BatchDelay,
		InterCallDelay:    cfg.InterCallDelay,
		DryRun:            gradeFlags.dryRun,
	})
	if err != nil {
		return err
	}

	gradesPath := filepath.Join(outDir, "grades.csv")
	if err := report.WriteGrades(gradesPath, results); err != nil {
		return err
	}
	logger.Info().Str("path", gradesPath).Msg("grade report written")

	flaggedPath := filepath.Join(outDir, "flagged_for_review.csv")
	written, err := report.WriteFlagged(flaggedPath, results)
	if err != nil {
		return err
	}
	if written {
		logger.Info().Str("path", flaggedPath).Int("flagged", runSummary.Flagged).Msg("flagged-for-review report written")
	} else {
		logger.Info().Msg("no submissions flagged for review")
	}

	logger.Info().
		Str("run_id", runSummary.RunID).
		Int("graded", runSummary.Total).
		Int("successful", runSummary.Successful).
		Int("errored", runSummary.Errored).
		Float64("mean_percentage", runSummary.MeanPercentage).
		Str("output_dir", outDir).
		Msg("run complete")

	return nil
}

func loadInstructions(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read instructions file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
