//go:build gosseract

package main

import (
	"log/slog"

	"github.com/zombor/deck-translate/internal/ocr"
	"github.com/zombor/deck-translate/internal/ocr/tesseract"
	"github.com/zombor/deck-translate/internal/platform"
)

// fallbackEngine serves system-fallback mode with libtesseract in-process
func fallbackEngine(backend platform.Backend) ocr.Engine {
	if backend.Mode != platform.ModeSystemFallback {
		return nil
	}
	slog.Info("Using in-process OCR engine")
	return tesseract.New(backend)
}
