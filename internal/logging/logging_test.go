package logging

import "testing"

func TestNewLogger_NilConfigDefaults(t *testing.T) {
	logger := NewLogger(nil)
	if logger == nil {
		t.Fatal("nil config must yield a usable logger")
	}
}

func TestNewLogger_Noop(t *testing.T) {
	logger := NewLogger(&Config{Style: StyleNoop})
	if logger == nil {
		t.Fatal("noop style must yield a logger")
	}
	if logger.Core().Enabled(0) {
		t.Error("noop logger must discard output")
	}
}

func TestNewLogger_UnknownStyleFallsBack(t *testing.T) {
	logger := NewLogger(&Config{Style: "carrier-pigeon", Level: "warn"})
	if logger == nil {
		t.Fatal("unknown style must fall back, not fail")
	}
	logger.Warn("fallback logger is usable")
}
