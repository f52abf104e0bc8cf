//go:build ocr

// Package ocr is the optional OCR collaborator for pages whose token
// stream came back empty or garbled. It wraps the Tesseract engine via
// gosseract and emits positioned tokens with per-word confidences, in the
// same coordinate convention as the upstream parser.
//
// This implementation is compiled with the "ocr" build tag and requires
// Tesseract installed on the system. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/reflow/model"
)

// Config holds OCR settings
type Config struct {
	// Language is the Tesseract language string; multiple languages join
	// with "+" (e.g. "eng+jpn")
	// Default: "eng"
	Language string

	// PageSegMode controls Tesseract's layout analysis
	// Default: gosseract.PSM_AUTO
	PageSegMode gosseract.PageSegMode
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Language:    "eng",
		PageSegMode: gosseract.PSM_AUTO,
	}
}

// Recognizer performs OCR on page images. Close it when no longer needed
// to release engine resources.
type Recognizer struct {
	client *gosseract.Client
}

// NewRecognizer creates a recognizer with default configuration
func NewRecognizer() (*Recognizer, error) {
	return NewRecognizerWithConfig(DefaultConfig())
}

// NewRecognizerWithConfig creates a recognizer with custom configuration
func NewRecognizerWithConfig(config Config) (*Recognizer, error) {
	client := gosseract.NewClient()
	if config.Language != "" {
		if err := client.SetLanguage(config.Language); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR language: %w", err)
		}
	}
	if err := client.SetPageSegMode(config.PageSegMode); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Recognizer{client: client}, nil
}

// Close releases OCR resources. Safe to call on a nil recognizer.
func (r *Recognizer) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// RecognizeTokens runs OCR on image data (TIFF, PNG, JPEG) and returns
// word-level tokens. Pixel coordinates are divided by scale to land in
// page units; pass 1.0 for pixel-space output. Confidence is normalized
// to [0,1].
func (r *Recognizer) RecognizeTokens(imageData []byte, scale float64, pageNo int) ([]model.Token, error) {
	if scale <= 0 {
		scale = 1.0
	}
	if err := r.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	tokens := make([]model.Token, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		bbox := model.NewBBox(
			float64(box.Box.Min.X)/scale,
			float64(box.Box.Min.Y)/scale,
			float64(box.Box.Max.X)/scale,
			float64(box.Box.Max.Y)/scale,
		)
		tokens = append(tokens, model.Token{
			Text:       box.Word,
			BBox:       bbox,
			FontSize:   bbox.Height(),
			Baseline:   bbox.Y1,
			Page:       pageNo,
			Confidence: box.Confidence / 100.0,
		})
	}
	model.SortTokens(tokens)
	return tokens, nil
}
