package util

import "testing"

func TestChecksum(t *testing.T) {
	data := []byte("Jane Doe\nPython developer")
	got := Checksum(data)
	if got != Checksum(data) {
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
	if got == Checksum([]byte("other")) {
		t.Fatalf("expected different content to hash differently")
	}
}
