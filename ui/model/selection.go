package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/soocke/screenrec/domain/capture"
)

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y"
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// ParseGeometry parses a Tk geometry string into a capture region.
func ParseGeometry(g string) (capture.Region, error) {
	g = strings.TrimSpace(g)
	m := geomRe.FindStringSubmatch(g)
	if len(m) != 5 {
		return capture.Region{}, fmt.Errorf("%w: geometry %q", capture.ErrInvalidRegion, g)
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	r := capture.Region{Left: x, Top: y, Width: w, Height: h}
	if err := r.Validate(); err != nil {
		return capture.Region{}, err
	}
	return r, nil
}

// FormatGeometry renders a region as a Tk geometry string.
func FormatGeometry(r capture.Region) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.Left, r.Top)
}
