package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxRecordIDLength bounds record identifiers accepted from callers.
const MaxRecordIDLength = 100

// ValidateRecordID validates an assessment record identifier.
// IDs are opaque but must be usable as a file name and a URL path segment:
//   - No empty IDs
//   - Maximum length of 100 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "record id cannot be empty")
	}

	if len(id) > MaxRecordIDLength {
		return New(ErrCodeInvalidInput, "record id too long (max %d characters)", MaxRecordIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "record id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "record id contains invalid characters")
	}

	return nil
}

// ValidateSections checks that every id in ids is one of known.
// An empty ids slice is valid and means "all sections".
func ValidateSections(ids, known []string) error {
	for _, id := range ids {
		if !slices.Contains(known, id) {
			return New(ErrCodeInvalidSection, "unknown section %q (valid: %s)", id, strings.Join(known, ", "))
		}
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (valid: %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
