package entity

import (
	"fmt"
	"strings"
)

const (
	// MaxUploadBytes is the largest accepted upload (10 MiB).
	MaxUploadBytes = 10 << 20

	maxNameLength = 255
)

// ValidateUpload checks the name, size and media type of an uploaded file.
// An unrecognized media type yields *UnsupportedFormatError; every other
// problem yields *ValidationError.
func ValidateUpload(name string, size int64, mediaType MediaType) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "file", Message: "file name is required"}
	}
	if len(name) > maxNameLength {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file name must not exceed %d characters", maxNameLength),
		}
	}
	if size <= 0 {
		return &ValidationError{Field: "file", Message: "file must not be empty"}
	}
	if size > MaxUploadBytes {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file must be at most %d bytes", MaxUploadBytes),
		}
	}
	if !mediaType.IsSupported() {
		return &UnsupportedFormatError{MediaType: mediaType}
	}
	return nil
}
