// Package imaging produces the compressed preview stored with a saved
// workout.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"

	"golang.org/x/image/draw"
)

// Preview defaults.
const (
	DefaultMaxDimension = 800
	DefaultQuality      = 70
)

// Compressor re-encodes an image so that it is bounded in size. It never
// fails: on any problem it returns its input.
type Compressor interface {
	Compress(img []byte, maxDimension, quality int) []byte
}

// JPEG decodes JPEG or PNG input, scales the longer side down to the
// maximum dimension and re-encodes as JPEG.
type JPEG struct {
	log *slog.Logger
}

// NewJPEG creates a JPEG compressor.
func NewJPEG(log *slog.Logger) *JPEG {
	return &JPEG{log: log}
}

// Compress returns the re-encoded image, or img itself when decoding or
// encoding fails or the result would not be smaller.
func (c *JPEG) Compress(img []byte, maxDimension, quality int) []byte {
	if len(img) == 0 {
		return img
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		c.log.Warn("preview decode failed, keeping original", "error", err)
		return img
	}

	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), maxDimension)
	var out image.Image = src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		c.log.Warn("preview encode failed, keeping original", "error", err)
		return img
	}
	if buf.Len() >= len(img) {
		return img
	}
	c.log.Debug("preview compressed", "from", len(img), "to", buf.Len(), "width", w, "height", h)
	return buf.Bytes()
}

// Fit scales (w, h) so the longer side is at most maxDimension, keeping
// the aspect ratio. Images already within bounds are unchanged.
func Fit(w, h, maxDimension int) (int, int) {
	long := max(w, h)
	if long <= maxDimension || long == 0 {
		return w, h
	}
	if w >= h {
		return maxDimension, max(1, (h*maxDimension+w/2)/w)
	}
	return max(1, (w*maxDimension+h/2)/h), maxDimension
}

// Passthrough returns images unchanged.
type Passthrough struct{}

func (Passthrough) Compress(img []byte, _, _ int) []byte { return img }
