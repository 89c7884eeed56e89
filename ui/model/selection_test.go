package model

import (
	"errors"
	"testing"

	"github.com/soocke/screenrec/domain/capture"
)

func TestParseGeometry(t *testing.T) {
	cases := []struct {
		in   string
		want capture.Region
	}{
		{"800x600+100+100", capture.Region{Left: 100, Top: 100, Width: 800, Height: 600}},
		{" 640x480+0+0\n", capture.Region{Left: 0, Top: 0, Width: 640, Height: 480}},
		{"300x200+-1920+40", capture.Region{Left: -1920, Top: 40, Width: 300, Height: 200}},
	}
	for _, c := range cases {
		got, err := ParseGeometry(c.in)
		if err != nil {
			t.Fatalf("ParseGeometry(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseGeometry(%q)=%+v want %+v", c.in, got, c.want)
		}
	}
}

func TestParseGeometry_Invalid(t *testing.T) {
	for _, in := range []string{"", "800x600", "0x600+1+1", "axb+1+1", "300x200-5+7"} {
		if _, err := ParseGeometry(in); !errors.Is(err, capture.ErrInvalidRegion) {
			t.Fatalf("ParseGeometry(%q) err=%v, want ErrInvalidRegion", in, err)
		}
	}
}

func TestFormatGeometry_RoundTrip(t *testing.T) {
	r := capture.Region{Left: -10, Top: 20, Width: 320, Height: 240}
	got, err := ParseGeometry(FormatGeometry(r))
	if err != nil || got != r {
		t.Fatalf("round trip: got %+v err=%v", got, err)
	}
}
