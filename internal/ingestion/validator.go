package ingestion

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"knowledgebase-backend/internal/documents"
)

// ValidationError rejects a single staged file. One bad file never
// fails the rest of a batch.
type ValidationError struct {
	FileName string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.FileName, e.Reason)
}

// Validator checks staged files against the size ceiling and derives
// their metadata defaults.
type Validator struct {
	MaxFileSizeBytes int64
}

// Validate checks a single file's size. Type is never a rejection
// reason, only a classification.
func (v Validator) Validate(fileName string, sizeBytes int64) error {
	if sizeBytes > v.MaxFileSizeBytes {
		return &ValidationError{
			FileName: fileName,
			Reason:   fmt.Sprintf("file is too large (%d bytes, limit %d)", sizeBytes, v.MaxFileSizeBytes),
		}
	}
	return nil
}

// Classify returns the processing class for a file name.
func Classify(fileName string) Class {
	if documents.ProcessableFileType(FileTypeOf(fileName)) {
		return ClassAIEligible
	}
	return ClassStorageOnly
}

// FileTypeOf returns the lowercase extension without the dot, or ""
// when the name has none.
func FileTypeOf(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DeriveTitle turns a file name into a presentable default title:
// extension stripped, dashes and underscores spaced, words capitalized.
func DeriveTitle(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	words := strings.Fields(base)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
