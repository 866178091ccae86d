package util

import "testing"

func TestHashUserKey(t *testing.T) {
	id := "google:12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
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
}

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName(" my book.pdf ")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "my book.pdf" {
		t.Fatalf("expected trimmed name, got %q", got)
	}

	got, err = SanitizeFileName(`a/b\c`)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "a_b_c" {
		t.Fatalf("expected separators replaced, got %q", got)
	}

	got, err = SanitizeFileName(`report".pdf`)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "report_.pdf" {
		t.Fatalf("expected quotes replaced, got %q", got)
	}

	if _, err := SanitizeFileName("../../etc/passwd"); err == nil {
		t.Fatalf("expected traversal rejected")
	}
	if _, err := SanitizeFileName("   "); err == nil {
		t.Fatalf("expected blank rejected")
	}
}
