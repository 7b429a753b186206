package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gradeagent/gradeagent/internal/models"
)

// auditRecord is one line of the audit log: the full grading result (the raw
// model payload is excluded by the result's own json tags, and the raw
// submission text never reaches a result) plus run metadata.
type auditRecord struct {
	models.GradingResult
	RunID      string    `json:"run_id"`
	Sequence   int       `json:"sequence"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AuditLogger appends grading results to a line-delimited JSON file. The file
// is opened and closed per write, so a partial write can corrupt at most the
// final line.
type AuditLogger struct {
	path  string
	runID string
	seq   int
	now   func() time.Time
}

// NewAuditLogger creates an audit logger writing to path under the given run
// identifier. The file is created lazily on the first append.
func NewAuditLogger(path, runID string) *AuditLogger {
	return &AuditLogger{
		path:  path,
		runID: runID,
		now:   time.Now,
	}
}

// Append writes one result as a single JSON line.
func (a *AuditLogger) Append(result models.GradingResult) error {
	a.seq++
	record := auditRecord{
		GradingResult: result,
		RunID:         a.runID,
		Sequence:      a.seq,
		RecordedAt:    a.now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
