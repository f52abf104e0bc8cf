package ocr

import (
	"bytes"
	"fmt"
	"image"

	"golang.org/x/image/tiff"
)

// EncodeTIFF serializes a rendered page image as uncompressed TIFF, the
// lossless hand-off format Tesseract reads natively. Lossy formats blur
// glyph edges and measurably hurt recognition on small text.
func EncodeTIFF(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Uncompressed}); err != nil {
		return nil, fmt.Errorf("failed to encode TIFF: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeTIFF reads a TIFF image back, for tests and debugging
func DecodeTIFF(data []byte) (image.Image, error) {
	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode TIFF: %w", err)
	}
	return img, nil
}
