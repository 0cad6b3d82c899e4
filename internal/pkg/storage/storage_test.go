package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "upload/ab/photo.jpg", strings.NewReader("pixels")))

	rc, err := s.Get(ctx, "upload/ab/photo.jpg")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "pixels", string(got))

	require.NoError(t, s.Delete(ctx, "upload/ab/photo.jpg"))
	require.NoError(t, s.Delete(ctx, "upload/ab/photo.jpg"), "deleting twice is fine")

	_, err = s.Get(ctx, "upload/ab/photo.jpg")
	assert.ErrorIs(t, err, ErrNotExist)

	assert.Error(t, s.Save(ctx, "../escape.txt", strings.NewReader("x")))
	_, err = s.Get(ctx, "upload/../../etc/passwd")
	assert.Error(t, err)
}

func pngOf(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestGenerateThumbnail(t *testing.T) {
	p := NewImageProcessor()

	out, err := p.GenerateThumbnail(bytes.NewReader(pngOf(800, 400)), ThumbnailSize, ThumbnailSize)
	require.NoError(t, err)
	img, format, err := image.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, ThumbnailSize, img.Bounds().Dx())
	assert.Equal(t, ThumbnailSize/2, img.Bounds().Dy())

	out, err = p.GenerateThumbnail(bytes.NewReader(pngOf(40, 20)), ThumbnailSize, ThumbnailSize)
	require.NoError(t, err)
	img, _, err = image.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx(), "small images are not upscaled")

	_, err = p.GenerateThumbnail(strings.NewReader("not an image"), 10, 10)
	assert.Error(t, err)
}
