//go:build gosseract

package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/zombor/deck-translate/internal/platform"
)

// client is the subset of *gosseract.Client the engine drives
type client interface {
	SetTessdataPrefix(prefix string) error
	SetLanguage(langs ...string) error
	SetImage(imagepath string) error
	Text() (string, error)
	Close() error
}

// Engine runs libtesseract in-process through gosseract. It is only built
// with the gosseract tag, since linking it requires libtesseract on the host.
type Engine struct {
	dataDir   string
	language  string
	newClient func() client
}

// New creates an Engine reading language data from the backend's data dir
func New(backend platform.Backend) *Engine {
	return &Engine{
		dataDir:   backend.DataDir,
		language:  backend.Language,
		newClient: func() client { return gosseract.NewClient() },
	}
}

// Text recognizes the text in the image at imagePath. A client is created
// per call since gosseract clients are not safe for concurrent use.
func (e *Engine) Text(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.newClient()
	defer c.Close()

	if e.dataDir != "" {
		if err := c.SetTessdataPrefix(e.dataDir); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if e.language != "" {
		if err := c.SetLanguage(e.language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close is a no-op; clients are released after every call
func (e *Engine) Close() error {
	return nil
}
