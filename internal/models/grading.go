package models

import "time"

// RubricScore is the finest-grained audit unit: one graded rubric criterion.
type RubricScore struct {
	Criterion     string  `json:"criterion"`
	MaxPoints     float64 `json:"max_points"`
	AwardedPoints float64 `json:"awarded_points"`
	Justification string  `json:"justification"`
}

// GradingResult is the outcome of grading a single submission. It is built
// exactly once per submission and never mutated afterwards.
//
// RawResponse keeps the unvalidated model payload for in-process debugging.
// It carries a `json:"-"` tag so that every serialization of the result,
// the audit log included, excludes it.
type GradingResult struct {
	StudentName      string         `json:"student_name"`
	TotalScore       float64        `json:"total_score"`
	MaxPossibleScore float64        `json:"max_possible_score"`
	Percentage       float64        `json:"percentage"`
	LetterGrade      string         `json:"letter_grade"`
	Feedback         string         `json:"feedback"`
	Strengths        []string       `json:"strengths"`
	Improvements     []string       `json:"improvements"`
	RubricScores     []RubricScore  `json:"rubric_scores"`
	IntegrityFlag    bool           `json:"integrity_flag"`
	IntegrityReason  string         `json:"integrity_reason"`
	Confidence       float64        `json:"confidence"`
	FlaggedForReview bool           `json:"flagged_for_review"`
	FlagReason       string         `json:"flag_reason"`
	Error            string         `json:"error,omitempty"`
	RawResponse      map[string]any `json:"-"`
}

// Errored reports whether grading could not complete for this submission.
func (r GradingResult) Errored() bool {
	return r.Error != ""
}

// BatchSummary carries run-level statistics computed after a grading pass.
type BatchSummary struct {
	RunID          string    `json:"run_id"`
	Assignment     string    `json:"assignment"`
	Total          int       `json:"total"`
	Successful     int       `json:"successful"`
	Flagged        int       `json:"flagged"`
	Errored        int       `json:"errored"`
	MeanPercentage float64   `json:"mean_percentage"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
