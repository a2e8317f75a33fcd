package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestWriteEmitsJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("application.ranking.failed", map[string]any{"application_id": 7})

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v (%q)", err, buf.String())
	}
	if payload["msg"] != "application.ranking.failed" || payload["level"] != "warning" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["application_id"] != float64(7) {
		t.Fatalf("missing field: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts: %v", payload)
	}
}

func TestDetachKeepsRequestIDOnly(t *testing.T) {
	parent, cancel := context.WithTimeout(WithRequestID(context.Background(), "req-1"), time.Millisecond)
	cancel()

	detached := Detach(parent)
	if detached.Err() != nil {
		t.Fatalf("detached context must not inherit cancellation")
	}
	if got := RequestIDFromContext(detached); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if RequestIDFromContext(Detach(context.Background())) != "" {
		t.Fatalf("expected empty request id")
	}
}
