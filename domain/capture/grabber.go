package capture

import "image"

// Grabber captures a rectangle of the screen. Implementations return a newly
// allocated image whose bounds have the size of the (possibly clipped) rect.
type Grabber interface {
	Grab(rect image.Rectangle) (*image.RGBA, error)
}

// GrabberFunc adapts a function to the Grabber interface.
type GrabberFunc func(image.Rectangle) (*image.RGBA, error)

func (f GrabberFunc) Grab(rect image.Rectangle) (*image.RGBA, error) { return f(rect) }
