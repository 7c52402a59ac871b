package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterEmitsJSONOutsideLocal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter("production", "info", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter failed: %v", err)
	}
	logger.Info().Str("ticker", "AAPL").Msg("processing company")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if event["service"] != "ecmgraph" {
		t.Fatalf("unexpected service field: %v", event["service"])
	}
	if event["ticker"] != "AAPL" {
		t.Fatalf("unexpected ticker field: %v", event["ticker"])
	}
}

func TestNewWithWriterRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter("production", "warn", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter failed: %v", err)
	}
	logger.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info event to be filtered, got %q", buf.String())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("local", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
