package photo

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dataURI(kind string, b []byte) string {
	return "data:image/" + kind + ";base64," + base64.StdEncoding.EncodeToString(b)
}

func TestDecode_PNGPassesThroughUnchanged(t *testing.T) {
	raw := pngBytes(t, 4, 3)
	p, err := Decode(dataURI("png", raw), Limits{MaxBytes: 1 << 20, MaxDimension: 1024})
	require.NoError(t, err)
	assert.Equal(t, raw, p.Data)
	assert.Equal(t, int64(len(raw)), p.Size())
	assert.Equal(t, "image/png", p.ContentType)
	assert.Equal(t, ".png", p.Ext)
	assert.False(t, p.Resized)
}

func TestDecode_JPEGTag(t *testing.T) {
	p, err := Decode(dataURI("jpeg", []byte("not really a jpeg")), Limits{})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", p.ContentType)
	assert.Equal(t, ".jpg", p.Ext)
	assert.Equal(t, "not really a jpeg", string(p.Data))
}

func TestDecode_BareBase64DefaultsToPNG(t *testing.T) {
	raw := pngBytes(t, 2, 2)
	p, err := Decode(base64.StdEncoding.EncodeToString(raw), Limits{})
	require.NoError(t, err)
	assert.Equal(t, raw, p.Data)
	assert.Equal(t, "image/png", p.ContentType)
}

func TestDecode_MalformedBase64(t *testing.T) {
	_, err := Decode("data:image/png;base64,@@@not-base64@@@", Limits{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_NonImageDataURI(t *testing.T) {
	_, err := Decode("data:text/plain;base64,aGVsbG8=", Limits{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode("data:image/png;base64,", Limits{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestDecode_TooLarge(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, 2048)
	_, err := Decode(dataURI("png", raw), Limits{MaxBytes: 1024})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDecode_DownscalesOversizedImage(t *testing.T) {
	raw := pngBytes(t, 200, 100)
	p, err := Decode(dataURI("png", raw), Limits{MaxDimension: 50})
	require.NoError(t, err)
	assert.True(t, p.Resized)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(p.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestEncode_FitsCaptureBox(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 640, 480))
	uri, err := Encode(img, CaptureWidth, CaptureHeight)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	p, err := Decode(uri, Limits{})
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	require.NoError(t, err)
	assert.Equal(t, CaptureWidth, cfg.Width)
	assert.Equal(t, CaptureHeight, cfg.Height)
}

func TestEncodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 10, 10), 0o600))

	uri, err := EncodeFile(path, CaptureWidth, CaptureHeight)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	_, err = EncodeFile(filepath.Join(t.TempDir(), "missing.png"), CaptureWidth, CaptureHeight)
	assert.Error(t, err)
}
