//go:build !gosseract

package main

import (
	"github.com/zombor/deck-translate/internal/ocr"
	"github.com/zombor/deck-translate/internal/platform"
)

// fallbackEngine returns no in-process engine, so system-fallback mode runs
// the tesseract binary found on PATH and the binary needs no libtesseract.
func fallbackEngine(platform.Backend) ocr.Engine {
	return nil
}
