package ingestion

import (
	"errors"
	"testing"
)

func TestValidateSizeCeiling(t *testing.T) {
	v := Validator{MaxFileSizeBytes: 48 << 20}

	if err := v.Validate("report.pdf", 48<<20); err != nil {
		t.Fatalf("Validate at exactly the ceiling = %v, want nil", err)
	}
	err := v.Validate("huge.pdf", 48<<20+1)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate over ceiling = %v, want ValidationError", err)
	}
	if verr.FileName != "huge.pdf" {
		t.Fatalf("FileName = %q", verr.FileName)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		fileName string
		want     Class
	}{
		{"notes.pdf", ClassAIEligible},
		{"notes.PDF", ClassAIEligible},
		{"readme.md", ClassAIEligible},
		{"data.csv", ClassAIEligible},
		{"log.txt", ClassAIEligible},
		{"photo.png", ClassStorageOnly},
		{"deck.pptx", ClassStorageOnly},
		{"archive.tar.gz", ClassStorageOnly},
		{"Makefile", ClassStorageOnly},
	}
	for _, tc := range cases {
		if got := Classify(tc.fileName); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.fileName, got, tc.want)
		}
	}
}

func TestFileTypeOf(t *testing.T) {
	cases := []struct {
		fileName string
		want     string
	}{
		{"report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"Makefile", ""},
		{"weird.", ""},
	}
	for _, tc := range cases {
		if got := FileTypeOf(tc.fileName); got != tc.want {
			t.Errorf("FileTypeOf(%q) = %q, want %q", tc.fileName, got, tc.want)
		}
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		fileName string
		want     string
	}{
		{"q3-sales_report.pdf", "Q3 Sales Report"},
		{"notes.txt", "Notes"},
		{"already Nice.md", "Already Nice"},
		{"___.txt", ""},
		{"a.csv", "A"},
	}
	for _, tc := range cases {
		if got := DeriveTitle(tc.fileName); got != tc.want {
			t.Errorf("DeriveTitle(%q) = %q, want %q", tc.fileName, got, tc.want)
		}
	}
}
