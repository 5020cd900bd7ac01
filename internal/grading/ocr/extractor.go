// Package ocr is the handwriting-extraction boundary. The session
// controller only sees Extractor and Result; implementations decide how
// text actually gets off the page.
package ocr

import (
	"context"
	"io"
)

// Result of extracting text from a handwritten image.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0..100, mean word confidence
	WordCount  int     `json:"word_count"`
	// NeedsReview is set when confidence fell below the extractor's
	// threshold and a human should verify before the grade stands.
	NeedsReview bool `json:"needs_review"`
}

type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (Result, error)
}
