package core

import (
	"path/filepath"
	"unicode/utf8"

	"github.com/huangsam/devflow/core/lang"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
)

// ClassifyPath decides from path metadata alone whether a file should be
// analyzed. It returns true to analyze, or false with a skip reason.
// Pure and deterministic; a file is excluded if it matches any ignore pattern.
func ClassifyPath(relPath string, size int64, excludes []string, maxSize int64) (schema.SkipReason, bool) {
	if contract.ShouldIgnore(relPath, excludes) {
		return schema.SkipIgnored, false
	}
	if lang.IsBinaryExt(filepath.Ext(relPath)) {
		return schema.SkipBinary, false
	}
	if size > maxSize {
		return schema.SkipTooLarge, false
	}
	return "", true
}

// ClassifyContent decides from file content whether analysis can proceed.
// Content that does not decode as UTF-8 is skipped, never an error.
func ClassifyContent(content []byte) (schema.SkipReason, bool) {
	if !utf8.Valid(content) {
		return schema.SkipNonUTF8, false
	}
	return "", true
}
