package prompt

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// allowedRubricTypes lists the image media types the grading model accepts.
var allowedRubricTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// RubricImage is the opaque inline representation of a rubric image, ready
// to embed in a model request.
type RubricImage struct {
	Base64    string
	MediaType string
}

// DataURL renders the rubric as an inline data URL.
func (r RubricImage) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", r.MediaType, r.Base64)
}

// EncodeRubric reads and encodes the rubric image once per call. The media
// type is detected from the file content and must be one of PNG, JPEG, GIF,
// or WebP.
func EncodeRubric(path string) (RubricImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RubricImage{}, fmt.Errorf("read rubric image: %w", err)
	}

	mediaType := mimetype.Detect(data).String()
	if !allowedRubricTypes[mediaType] {
		return RubricImage{}, fmt.Errorf("unsupported rubric image type %q (want PNG, JPEG, GIF, or WebP): %s", mediaType, path)
	}

	return RubricImage{
		Base64:    base64.StdEncoding.EncodeToString(data),
		MediaType: mediaType,
	}, nil
}
