package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/zombor/deck-translate/internal/ocr"
)

const (
	// NoTextPlaceholder replaces an empty OCR result
	NoTextPlaceholder = "no text recognized, try another screenshot"

	errCaptureFailed = "failed to capture screenshot"
)

// Result is what a capture call hands back to the frontend. Success
// implies Image and Text are set; failure implies Error is set.
type Result struct {
	Success  bool   `json:"success"`
	Image    string `json:"image,omitempty"`
	Text     string `json:"text,omitempty"`
	Error    string `json:"error,omitempty"`
	OCRError bool   `json:"ocr_error,omitempty"`
}

// Failure builds an unsuccessful Result
func Failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// IDGenerator generates unique temp file names
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Capturer grabs the screen and runs OCR on it
type Capturer struct {
	display     Display
	storage     Storage
	recognizer  ocr.Recognizer
	idGenerator IDGenerator
}

// NewCapturer creates a Capturer naming temp files with random UUIDs
func NewCapturer(display Display, storage Storage, recognizer ocr.Recognizer) *Capturer {
	return NewCapturerWithDeps(display, storage, recognizer, uuidGenerator{})
}

// NewCapturerWithDeps creates a Capturer with a custom ID generator for testing
func NewCapturerWithDeps(display Display, storage Storage, recognizer ocr.Recognizer, idGen IDGenerator) *Capturer {
	return &Capturer{
		display:     display,
		storage:     storage,
		recognizer:  recognizer,
		idGenerator: idGen,
	}
}

// Capture grabs the primary display once, stores it in a temp file,
// encodes it as base64 and recognizes its text.
func (c *Capturer) Capture(ctx context.Context) Result {
	slog.Info("Capturing screenshot")
	img, err := c.display.Grab()
	if err != nil || img == nil || img.Bounds().Empty() {
		slog.Error("Screenshot returned no data", "error", err)
		return Failure(errCaptureFailed)
	}

	name := fmt.Sprintf("screenshot_%s.png", c.idGenerator.Generate())
	path, encoded, err := c.persist(name, img)
	if err != nil {
		slog.Error("Failed to encode screenshot", "error", err)
		return Failure(fmt.Sprintf("failed to encode screenshot: %v", err))
	}
	defer c.remove(name)
	slog.Info("Screenshot saved", "path", path)

	res := c.recognizer.Recognize(ctx, path)
	text := res.Message()
	if res.OK() && strings.TrimSpace(text) == "" {
		slog.Warn("No text recognized")
		text = NoTextPlaceholder
	}
	slog.Info("Text recognition finished", "ok", res.OK())

	return Result{
		Success:  true,
		Image:    encoded,
		Text:     text,
		OCRError: !res.OK(),
	}
}

// persist writes img as PNG under name, reads it back and returns the
// path along with the base64 encoding of the stored bytes.
func (c *Capturer) persist(name string, img *image.RGBA) (string, string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, opaque(img)); err != nil {
		return "", "", fmt.Errorf("encoding PNG: %w", err)
	}

	path, err := c.storage.Save(name, buf.Bytes())
	if err != nil {
		return "", "", fmt.Errorf("saving screenshot: %w", err)
	}

	data, err := c.storage.Get(name)
	if err != nil {
		c.remove(name)
		return "", "", fmt.Errorf("reading screenshot: %w", err)
	}

	return path, base64.StdEncoding.EncodeToString(data), nil
}

// remove deletes the temp screenshot; failures are only logged
func (c *Capturer) remove(name string) {
	if err := c.storage.Delete(name); err != nil {
		slog.Warn("Failed to remove temp screenshot", "name", name, "error", err)
	}
}

// opaque drops the alpha channel so the PNG is stored as plain RGB
func opaque(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	return dst
}
