package processing

import (
	"bytes"
	"errors"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

const (
	DefaultThumbnailSize    = 200
	DefaultThumbnailQuality = 75
)

var ErrEmptyImage = errors.New("image has no pixels")

type ThumbInfo struct {
	Width  int
	Height int
	Size   int64
}

// ThumbDimensions scales the shorter side to exactly size, the longer one proportionally
// (truncated). Squares count as "taller than wide".
func ThumbDimensions(width, height, size int) (thumbWidth, thumbHeight int) {
	if width > height {
		return width * size / height, size
	}
	return size, height * size / width
}

// CreateThumb writes a JPEG thumbnail of img to writer
func CreateThumb(img image.Image, size, quality int, writer io.Writer) (result ThumbInfo, err error) {
	bounds := img.Bounds().Size()
	if bounds.X <= 0 || bounds.Y <= 0 {
		return result, ErrEmptyImage
	}
	width, height := ThumbDimensions(bounds.X, bounds.Y, size)
	thumb := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return
	}
	result.Width = width
	result.Height = height
	result.Size, err = io.Copy(writer, &buf)
	return
}
