package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
)

// EncodePNG accepts PNG or JPEG bytes and returns the same picture as PNG,
// which is what the vision model is sent.
func EncodePNG(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, invalidInput("image", "Image is required")
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		e := invalidInput("image", "Image must be a PNG or JPEG file")
		e.Err = err
		return nil, e
	}
	if format != "png" && format != "jpeg" {
		return nil, invalidInput("image", fmt.Sprintf("Unsupported image format %q", format))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
