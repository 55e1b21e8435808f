package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/zombor/deck-translate/internal/platform"
)

// Runner dispatches recognition according to the resolved backend
type Runner struct {
	backend platform.Backend
	engine  Engine
}

// NewRunner creates a Runner. engine serves system-fallback mode; when it
// is nil the system tesseract binary is run instead.
func NewRunner(backend platform.Backend, engine Engine) *Runner {
	return &Runner{
		backend: backend,
		engine:  engine,
	}
}

// Backend returns the backend the runner was built with
func (r *Runner) Backend() platform.Backend {
	return r.backend
}

// Recognize runs OCR on the image at imagePath. It never panics; every
// failure comes back as a Result carrying an error.
func (r *Runner) Recognize(ctx context.Context, imagePath string) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("OCR panicked", "path", imagePath, "panic", p)
			result = errorResult(fmt.Errorf("%v", p))
		}
	}()

	if _, err := os.Stat(imagePath); err != nil {
		slog.Error("OCR image not readable", "path", imagePath, "error", err)
		return errorResult(fmt.Errorf("opening image: %w", err))
	}

	var (
		text string
		err  error
	)
	switch r.backend.Mode {
	case platform.ModeWrapper:
		slog.Info("Running OCR through wrapper", "wrapper", r.backend.WrapperPath)
		text, err = r.run(ctx, r.backend.WrapperPath, imagePath, "stdout")
	case platform.ModeDirect:
		slog.Info("Running OCR binary", "binary", r.backend.ExecutablePath)
		text, err = r.run(ctx, r.backend.ExecutablePath, r.directArgs(imagePath)...)
	case platform.ModeSystemFallback:
		if r.engine != nil {
			slog.Info("Running OCR in-process")
			text, err = r.engine.Text(ctx, imagePath)
		} else {
			slog.Info("Running system OCR binary", "binary", r.backend.ExecutablePath)
			text, err = r.run(ctx, r.backend.ExecutablePath, r.directArgs(imagePath)...)
		}
	default:
		err = fmt.Errorf("unknown OCR mode %q", r.backend.Mode)
	}

	if err != nil {
		slog.Error("OCR failed", "mode", r.backend.Mode, "path", imagePath, "error", err)
		return errorResult(err)
	}
	return textResult(text)
}

// directArgs is tesseract's standard command line for printing text
func (r *Runner) directArgs(imagePath string) []string {
	args := []string{imagePath, "stdout"}
	if r.backend.Language != "" {
		args = append(args, "-l", r.backend.Language)
	}
	return args
}

// run executes name with args and returns its standard output
func (r *Runner) run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), r.backend.Env()...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("Executing OCR command", "command", name+" "+strings.Join(args, " "))
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				return "", fmt.Errorf("%s exited with code %d", name, exitErr.ExitCode())
			}
			return "", fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), detail)
		}
		return "", fmt.Errorf("running %s: %w", name, err)
	}
	return string(out), nil
}
