package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Display grabs the pixels of a screen
type Display interface {
	Grab() (*image.RGBA, error)
}

// PrimaryDisplay captures the first display the OS enumerates
type PrimaryDisplay struct{}

// Grab captures the full region of the primary display
func (PrimaryDisplay) Grab() (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return nil, fmt.Errorf("no active displays")
	}

	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capturing display: %w", err)
	}
	return img, nil
}
