//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestNewRecognizerReturnsError(t *testing.T) {
	recognizer, err := NewRecognizer()
	if err == nil {
		t.Error("expected error from NewRecognizer when OCR is disabled")
	}
	if !errors.Is(err, ErrNotEnabled) {
		t.Errorf("expected ErrNotEnabled, got: %v", err)
	}
	if recognizer != nil {
		t.Error("expected nil recognizer when OCR is disabled")
	}
}

func TestCloseOnNilRecognizer(t *testing.T) {
	var recognizer *Recognizer
	if err := recognizer.Close(); err != nil {
		t.Errorf("Close on nil recognizer should not error: %v", err)
	}
}

func TestRecognizeTokensReturnsError(t *testing.T) {
	r := &Recognizer{}
	if _, err := r.RecognizeTokens(nil, 1.0, 1); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("expected ErrNotEnabled, got: %v", err)
	}
}
