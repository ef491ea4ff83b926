package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger(warnStack bool) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Options{
		ServiceName: "test",
		Level:       zerolog.DebugLevel,
		WarnStack:   warnStack,
		Output:      buf,
	}), buf
}

func TestErrorCarriesContextFields(t *testing.T) {
	log, buf := newTestLogger(false)

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithUserID(ctx, 42)
	ctx = log.WithPurchaseID(ctx, 9)

	log.Error(ctx, "purchase confirm failed", errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log entry is not json: %v; entry=%s", err, buf.String())
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("expected request_id preserved, got %v", entry["request_id"])
	}
	if entry["user_id"] != float64(42) {
		t.Fatalf("expected user_id preserved, got %v", entry["user_id"])
	}
	if entry["purchase_id"] != float64(9) {
		t.Fatalf("expected purchase_id preserved, got %v", entry["purchase_id"])
	}
	if entry["stack"] == nil {
		t.Fatalf("expected stack trace on error; entry=%s", buf.String())
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
}

func TestWithListingIDFieldName(t *testing.T) {
	log, buf := newTestLogger(false)

	ctx := log.WithListingID(context.Background(), "11111111-2222-3333-4444-555555555555")
	log.Info(ctx, "listing expired")

	if !bytes.Contains(buf.Bytes(), []byte(`"listing_id":"11111111-2222-3333-4444-555555555555"`)) {
		t.Fatalf("expected listing_id field; entry=%s", buf.String())
	}
}

func TestWarnStackToggle(t *testing.T) {
	log, buf := newTestLogger(true)
	log.Warn(context.Background(), "payment gateway not configured")
	if !bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack when warn stack enabled; entry=%s", buf.String())
	}

	log, buf = newTestLogger(false)
	log.Warn(context.Background(), "payment gateway not configured")
	if bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("did not expect stack when warn stack disabled; entry=%s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info for empty level, got %v", lvl)
	}
	if lvl := ParseLevel("nonsense"); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info fallback for unknown level, got %v", lvl)
	}
	if lvl := ParseLevel(" DEBUG "); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v", lvl)
	}
}
