package ai

import "context"

// Block types for the multimodal grading request.
const (
	BlockTypeText  = "text"
	BlockTypeImage = "image"
)

// ContentBlock is one ordered part of the user message: either plain text or
// an inline image reference (data URL).
type ContentBlock struct {
	Type     string
	Text     string
	ImageURL string
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeText, Text: text}
}

// ImageBlock builds an inline image content block from a data URL.
func ImageBlock(dataURL string) ContentBlock {
	return ContentBlock{Type: BlockTypeImage, ImageURL: dataURL}
}

// GradingRequest is a fully composed model request: system-level grading
// instructions plus the ordered multimodal content blocks.
type GradingRequest struct {
	SystemPrompt string
	Blocks       []ContentBlock
}

// Grader describes a model capable of grading a submission against a rubric.
// Grade returns the raw response body; decoding and validation belong to the
// caller so that malformed payloads can drive its retry policy.
type Grader interface {
	Grade(ctx context.Context, req GradingRequest) (string, error)
	TestConnection(ctx context.Context) bool
}
