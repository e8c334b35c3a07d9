package validation

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/stretchr/testify/require"
)

func testPicture() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	return img
}

// jpegImage returns a real JPEG padded with trailing bytes up to size.
func jpegImage(t *testing.T, name string, size int) domain.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testPicture(), nil))
	data := buf.Bytes()
	if size > len(data) {
		data = append(data, make([]byte, size-len(data))...)
	}
	return domain.Image{Name: name, ContentType: "image/jpeg", Data: data}
}

func pngImage(t *testing.T, name string) domain.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testPicture()))
	return domain.Image{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}
