package capture

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ErrInvalidRegion reports a capture rectangle with non-positive size.
var ErrInvalidRegion = errors.New("invalid capture region")

// Region is the screen rectangle recorded during one session. It is fixed
// before the producers start and never mutated afterwards.
type Region struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Validate reports whether the region has a positive size.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidRegion, r.Width, r.Height)
	}
	return nil
}

// Even trims width and height down to even numbers as required by 4:2:0
// chroma subsampling in the final encode.
func (r Region) Even() Region {
	r.Width &^= 1
	r.Height &^= 1
	return r
}

// ClampTo returns the part of r inside screen. A region entirely off screen
// is invalid.
func (r Region) ClampTo(screen image.Rectangle) (Region, error) {
	c := r.Rect().Intersect(screen)
	if c.Empty() {
		return Region{}, fmt.Errorf("%w: %s is outside the screen %v", ErrInvalidRegion, r, screen)
	}
	return RegionFromRect(c), nil
}

// Rect returns the region as an image.Rectangle in screen coordinates.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.Left, r.Top)
}

// RegionFromRect converts a screen rectangle into a Region.
func RegionFromRect(rect image.Rectangle) Region {
	return Region{Left: rect.Min.X, Top: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}
}

// ParseRegion parses "left,top,width,height".
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("%w: want left,top,width,height, got %q", ErrInvalidRegion, s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("%w: %q: %v", ErrInvalidRegion, s, err)
		}
		v[i] = n
	}
	r := Region{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}
