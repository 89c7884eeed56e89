//go:build !windows

package capture

import (
	"errors"
	"image"

	"github.com/vova616/screenshot"
)

type screenshotGrabber struct{}

// NewGrabber returns the platform screen grabber.
func NewGrabber() Grabber { return screenshotGrabber{} }

func (screenshotGrabber) Grab(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, errors.New("capture: empty selection")
	}
	return screenshot.CaptureRect(rect)
}

// ScreenBounds returns the rectangle covered by the screen.
func ScreenBounds() (image.Rectangle, error) {
	return screenshot.ScreenRect()
}
