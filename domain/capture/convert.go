package capture

import (
	"fmt"
	"image"
)

// ToBGR packs img into dst as BGR24 rows without padding. dst must hold
// exactly width*height*3 bytes.
func ToBGR(img *image.RGBA, dst []byte) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(dst) != w*h*3 {
		return fmt.Errorf("capture: bgr buffer %d bytes, frame needs %d", len(dst), w*h*3)
	}
	j := 0
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			dst[j] = row[i+2]
			dst[j+1] = row[i+1]
			dst[j+2] = row[i]
			j += 3
		}
	}
	return nil
}
