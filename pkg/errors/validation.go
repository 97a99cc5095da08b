package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxPersonIDLength bounds ids that end up in file names and URLs.
const maxPersonIDLength = 256

// ValidatePersonID validates a person id before it is used to build a
// storage path (e.g. "uploads/<id>.png").
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidatePersonID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidPersonID, "person id cannot be empty")
	}

	if len(id) > maxPersonIDLength {
		return New(ErrCodeInvalidPersonID, "person id too long (max %d characters)", maxPersonIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPersonID, "person id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidPersonID, "person id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// imageExtensions lists the avatar file types accepted for upload.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// ValidateUploadFilename validates the client-supplied name of an avatar
// upload. Only the extension is kept, so the check is about the extension
// being a known image type.
func ValidateUploadFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidFilename, "upload filename cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return New(ErrCodeInvalidFilename, "upload filename has no extension: %q", filename)
	}
	if !imageExtensions[ext] {
		return New(ErrCodeInvalidFilename, "unsupported image type: %q", ext)
	}

	return nil
}
