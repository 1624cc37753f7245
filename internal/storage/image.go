package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

// ErrNotImage is returned for uploads that do not decode as an image.
var ErrNotImage = errors.New("file is not a supported image")

// PhotoProcessor normalises uploads to a bounded JPEG.
type PhotoProcessor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func DefaultPhotoProcessor() PhotoProcessor {
	return PhotoProcessor{MaxWidth: 1600, MaxHeight: 1600, Quality: 85}
}

// Process decodes r, shrinks it to fit MaxWidth x MaxHeight keeping the
// aspect ratio and re-encodes it as JPEG.  EXIF orientation is applied.
func (p PhotoProcessor) Process(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	b := img.Bounds()
	if b.Dx() > p.MaxWidth || b.Dy() > p.MaxHeight {
		img = imaging.Fit(img, p.MaxWidth, p.MaxHeight, imaging.Lanczos)
	}
	return encodeJPEG(img, p.Quality)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
