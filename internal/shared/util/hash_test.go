package util

import "testing"

func TestHashOwnerKey(t *testing.T) {
	id := "job_seeker:42"
	got := HashOwnerKey(id)
	if got != HashOwnerKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	if HashOwnerKey("job_seeker:7") == got {
		t.Fatalf("distinct owners must not collide")
	}
}
