package object

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
)

func TestBuildKeyNamespacesOwner(t *testing.T) {
	a, err := BuildKey("job_seeker:42", "my cv.pdf")
	if err != nil {
		t.Fatalf("BuildKey: %v", err)
	}
	b, err := BuildKey("job_seeker:42", "my cv.pdf")
	if err != nil {
		t.Fatalf("BuildKey: %v", err)
	}
	if a == b {
		t.Fatalf("expected unique keys, got %q twice", a)
	}
	if strings.Split(a, "/")[0] != strings.Split(b, "/")[0] {
		t.Fatalf("expected shared owner prefix: %q vs %q", a, b)
	}
	if !strings.HasSuffix(a, "_my cv.pdf") {
		t.Fatalf("expected file name suffix, got %q", a)
	}
	if _, err := BuildKey("x", "../../etc"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
}

func TestSniffReplaysHeadAndMeterHashes(t *testing.T) {
	payload := "%PDF-1.4 resume body"
	mime, r, err := Sniff(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if mime != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", mime)
	}
	m := NewMeter(r)
	got, err := io.ReadAll(m)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != payload {
		t.Fatalf("expected replayed payload, got %q", got)
	}
	sum := sha256.Sum256([]byte(payload))
	if m.Sum() != hex.EncodeToString(sum[:]) || m.Size() != int64(len(payload)) {
		t.Fatalf("unexpected meter result size=%d sum=%s", m.Size(), m.Sum())
	}
}
