package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat is matched by every UnsupportedFormatError via errors.Is.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// UnsupportedFormatError is returned when a media type is not one the extractor can handle.
type UnsupportedFormatError struct {
	MediaType MediaType
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("invalid file type %q: use PDF, DOC, DOCX, or TXT", string(e.MediaType))
}

// Is lets errors.Is(err, ErrUnsupportedFormat) match any UnsupportedFormatError.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
