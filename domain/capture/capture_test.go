package capture

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestToBGR_SwapsChannelsAndSkipsStride(t *testing.T) {
	// Sub-image keeps the parent stride, so rows carry padding.
	parent := image.NewRGBA(image.Rect(0, 0, 4, 2))
	parent.Set(1, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	parent.Set(2, 0, color.RGBA{R: 4, G: 5, B: 6, A: 255})
	parent.Set(1, 1, color.RGBA{R: 7, G: 8, B: 9, A: 255})
	sub := parent.SubImage(image.Rect(1, 0, 3, 2)).(*image.RGBA)

	dst := make([]byte, 2*2*3)
	if err := ToBGR(sub, dst); err != nil {
		t.Fatalf("ToBGR: %v", err)
	}
	want := []byte{3, 2, 1, 6, 5, 4, 9, 8, 7, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst=%v want %v", dst, want)
		}
	}
}

func TestToBGR_SizeMismatch(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	if err := ToBGR(img, make([]byte, 10)); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion(" 10, 20 ,640,480")
	if err != nil {
		t.Fatalf("ParseRegion: %v", err)
	}
	if r != (Region{Left: 10, Top: 20, Width: 640, Height: 480}) {
		t.Fatalf("region=%+v", r)
	}
	if got := r.Rect(); got != image.Rect(10, 20, 650, 500) {
		t.Fatalf("rect=%v", got)
	}
	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "0,0,0,10", "0,0,10,-1"} {
		if _, err := ParseRegion(bad); !errors.Is(err, ErrInvalidRegion) {
			t.Fatalf("ParseRegion(%q) err=%v, want ErrInvalidRegion", bad, err)
		}
	}
}

func TestSinkArgs(t *testing.T) {
	args := SinkArgs(SinkOptions{Path: "aufnahme.avi", Width: 640, Height: 480, FPS: 30, Quality: 99})
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-f rawvideo",
		"-pix_fmt bgr24",
		"-s 640x480",
		"-r 30",
		"-i pipe:0",
		"-c:v mjpeg",
		"-q:v 3",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if args[len(args)-1] != "aufnahme.avi" {
		t.Fatalf("last arg=%q, want output path", args[len(args)-1])
	}
}

func TestRegion_Even(t *testing.T) {
	r := Region{Left: 3, Top: 5, Width: 641, Height: 481}.Even()
	if r != (Region{Left: 3, Top: 5, Width: 640, Height: 480}) {
		t.Fatalf("region=%+v", r)
	}
	if err := (Region{Width: 1, Height: 1}).Even().Validate(); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("1x1 should become invalid, err=%v", err)
	}
}

func TestRegion_ClampTo(t *testing.T) {
	screen := image.Rect(-1280, 0, 1920, 1080)
	got, err := Region{Left: -1300, Top: 1000, Width: 200, Height: 200}.ClampTo(screen)
	if err != nil {
		t.Fatalf("ClampTo: %v", err)
	}
	if got != (Region{Left: -1280, Top: 1000, Width: 180, Height: 80}) {
		t.Fatalf("region=%+v", got)
	}
	if _, err := (Region{Left: 2000, Top: 0, Width: 10, Height: 10}).ClampTo(screen); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("err=%v, want ErrInvalidRegion", err)
	}
}
