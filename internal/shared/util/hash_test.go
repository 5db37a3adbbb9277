package util

import "testing"

func TestHashUserKeyStable(t *testing.T) {
	a := HashUserKey("user-1")
	b := HashUserKey("user-1")
	if a != b {
		t.Fatalf("hash not stable: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashUserKey("user-2") {
		t.Fatal("different inputs should not collide")
	}
}

func TestSanitizeFileName(t *testing.T) {
	if _, err := SanitizeFileName("../etc/passwd"); err == nil {
		t.Fatal("expected traversal rejection")
	}
	got, err := SanitizeFileName("reports/q1 summary.pdf")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "reports_q1 summary.pdf" {
		t.Fatalf("sanitized = %q", got)
	}
}
