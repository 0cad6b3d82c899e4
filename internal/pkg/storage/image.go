package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

// ThumbnailSize bounds both sides of a stadium photo thumbnail.
const ThumbnailSize = 320

// ImageProcessor turns uploaded photos into JPEG thumbnails.
type ImageProcessor struct{}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// GenerateThumbnail fits the image into maxWidth x maxHeight, keeping its aspect
// ratio, and returns it as JPEG. EXIF orientation is honoured.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var thumb image.Image = img
	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		thumb = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf, nil
}
