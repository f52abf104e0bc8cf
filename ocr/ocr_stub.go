//go:build !ocr

// Package ocr is the optional OCR collaborator for pages whose token
// stream came back empty or garbled.
//
// This is the stub implementation used when the "ocr" build tag is not
// set; all operations return ErrNotEnabled. To enable OCR, rebuild with
// the tag:
//
//	go build -tags ocr
//
// This requires Tesseract installed on the system. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"errors"

	"github.com/tsawler/reflow/model"
)

// ErrNotEnabled is returned when OCR is called but support was not
// compiled in. Rebuild with -tags ocr to enable it.
var ErrNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Config holds OCR settings (matching the OCR-enabled implementation)
type Config struct {
	Language    string
	PageSegMode int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{Language: "eng"}
}

// Recognizer is a stub that returns ErrNotEnabled for all operations
type Recognizer struct{}

// NewRecognizer returns ErrNotEnabled
func NewRecognizer() (*Recognizer, error) {
	return nil, ErrNotEnabled
}

// NewRecognizerWithConfig returns ErrNotEnabled
func NewRecognizerWithConfig(config Config) (*Recognizer, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op. Safe to call on a nil recognizer.
func (r *Recognizer) Close() error {
	return nil
}

// RecognizeTokens returns ErrNotEnabled
func (r *Recognizer) RecognizeTokens(imageData []byte, scale float64, pageNo int) ([]model.Token, error) {
	return nil, ErrNotEnabled
}
