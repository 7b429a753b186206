package models

// Submission represents one student's processed PDF submission.
type Submission struct {
	StudentName       string `json:"student_name"`
	FilePath          string `json:"file_path"`
	TextContent       string `json:"-"`
	PageCount         int    `json:"page_count"`
	ExtractionSuccess bool   `json:"extraction_success"`
	ErrorMessage      string `json:"error_message,omitempty"`
}

// SubmissionSummary aggregates extraction outcomes for pre-run reporting.
type SubmissionSummary struct {
	Total         int      `json:"total"`
	Successful    int      `json:"successful"`
	Failed        int      `json:"failed"`
	FailedNames   []string `json:"failed_names"`
	FailedReasons []string `json:"failed_reasons"`
}
