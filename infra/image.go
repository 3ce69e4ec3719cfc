package infra

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/tnqbao/gau-photo-share/entity"
)

var ErrUndecodableImage = errors.New("undecodable image")

// ResizeImage scales the encoded image to exactly dim and re-encodes it in
// the format named by ext. Aspect ratio is not preserved.
func ResizeImage(data []byte, ext string, dim entity.Dimension) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dim.Width, dim.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch ext {
	case "png":
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("failed to encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
			return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	default:
		return nil, "", entity.NewValidationError("name", fmt.Sprintf("unsupported image format %q", ext))
	}
}
