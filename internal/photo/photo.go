// Package photo decodes selfie data URIs into bounded image buffers and
// encodes captured images back into data URIs.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	ErrMalformed = errors.New("photo: malformed data uri")
	ErrEmpty     = errors.New("photo: empty image")
	ErrTooLarge  = errors.New("photo: image exceeds size limit")
)

var dataURIPrefix = regexp.MustCompile(`^data:image/(\w+);base64,`)

type format struct {
	contentType string
	ext         string
	encoding    imaging.Format
}

var formats = map[string]format{
	"png":  {"image/png", ".png", imaging.PNG},
	"jpeg": {"image/jpeg", ".jpg", imaging.JPEG},
	"jpg":  {"image/jpeg", ".jpg", imaging.JPEG},
	"gif":  {"image/gif", ".gif", imaging.GIF},
	"webp": {"image/webp", ".webp", imaging.PNG},
}

// Photo is a decoded image ready for upload.
type Photo struct {
	Data        []byte
	ContentType string
	Ext         string
	// Resized is true when the image was downscaled to fit the dimension bound.
	Resized bool
}

func (p *Photo) Size() int64 { return int64(len(p.Data)) }

// Limits bound a decoded photo. Zero values disable the respective check.
type Limits struct {
	MaxBytes     int64
	MaxDimension int
}

// Decode parses a data:image/<fmt>;base64 URI. Without the prefix the whole
// string is treated as base64 PNG data.
//
// Images larger than MaxDimension on either side are downscaled and
// re-encoded; everything else, including payloads whose header cannot be
// parsed as an image, is returned byte for byte.
func Decode(dataURI string, lim Limits) (*Photo, error) {
	f := formats["png"]
	payload := dataURI
	if m := dataURIPrefix.FindStringSubmatch(dataURI); m != nil {
		if known, ok := formats[strings.ToLower(m[1])]; ok {
			f = known
		}
		payload = dataURI[len(m[0]):]
	} else if strings.HasPrefix(dataURI, "data:") {
		return nil, ErrMalformed
	}

	if lim.MaxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > lim.MaxBytes+2 {
		return nil, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if lim.MaxBytes > 0 && int64(len(data)) > lim.MaxBytes {
		return nil, ErrTooLarge
	}

	p := &Photo{Data: data, ContentType: f.contentType, Ext: f.ext}
	if lim.MaxDimension > 0 {
		if err := p.fit(lim.MaxDimension, f); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Photo) fit(maxDim int, f format) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil || (cfg.Width <= maxDim && cfg.Height <= maxDim) {
		return nil
	}
	img, err := imaging.Decode(bytes.NewReader(p.Data), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("photo: decode for resize: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(img, maxDim, maxDim, imaging.Lanczos), f.encoding); err != nil {
		return fmt.Errorf("photo: encode resized: %w", err)
	}
	p.Data = buf.Bytes()
	p.Resized = true
	if f.encoding == imaging.PNG {
		p.ContentType, p.Ext = "image/png", ".png"
	}
	return nil
}
