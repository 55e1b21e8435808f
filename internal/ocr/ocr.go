package ocr

import (
	"context"
	"strings"
)

// ErrorPrefix starts every OCR failure message shown to a user
const ErrorPrefix = "OCR Error:"

// Result is the outcome of one recognition: either text or an error
type Result struct {
	Text string
	Err  error
}

// OK reports whether recognition succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Message renders the result as a single string. Failures are
// prefixed with ErrorPrefix.
func (r Result) Message() string {
	if r.Err != nil {
		return ErrorPrefix + " " + r.Err.Error()
	}
	return r.Text
}

func textResult(text string) Result {
	return Result{Text: strings.TrimSpace(text)}
}

func errorResult(err error) Result {
	return Result{Err: err}
}

// Engine runs OCR in-process on an image file
type Engine interface {
	// Text returns the text recognized in the image at imagePath
	Text(ctx context.Context, imagePath string) (string, error)
	// Close releases engine resources
	Close() error
}

// Recognizer turns an image file into text
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) Result
}
