package photo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Default capture box, matching the selfie canvas.
const (
	CaptureWidth  = 320
	CaptureHeight = 240
)

// Encode fits img into a width x height box and returns it as a PNG data URI.
func Encode(img image.Image, width, height int) (string, error) {
	b := img.Bounds()
	if b.Dx() > width || b.Dy() > height {
		img = imaging.Fit(img, width, height, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("photo: encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeFile opens an image file the way a native file picker would hand it
// over and returns a bounded PNG data URI.
func EncodeFile(path string, width, height int) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("photo: open %s: %w", path, err)
	}
	return Encode(img, width, height)
}
