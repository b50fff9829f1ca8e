package entity

import (
	"mime"
	"path/filepath"
	"strings"
)

// MediaType is the declared content type of an uploaded document.
type MediaType string

// Recognized media types. Anything else is rejected with UnsupportedFormatError.
const (
	MediaTypePlainText MediaType = "text/plain"
	MediaTypePDF       MediaType = "application/pdf"
	MediaTypeDocx      MediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeDoc       MediaType = "application/msword"
)

var extensionMediaTypes = map[string]MediaType{
	".txt":  MediaTypePlainText,
	".pdf":  MediaTypePDF,
	".docx": MediaTypeDocx,
	".doc":  MediaTypeDoc,
}

// SupportedMediaTypes returns the media types the extractor understands.
func SupportedMediaTypes() []MediaType {
	return []MediaType{MediaTypePlainText, MediaTypePDF, MediaTypeDocx, MediaTypeDoc}
}

// IsSupported reports whether m is one of the recognized media types.
func (m MediaType) IsSupported() bool {
	switch m {
	case MediaTypePlainText, MediaTypePDF, MediaTypeDocx, MediaTypeDoc:
		return true
	}
	return false
}

// Extension returns the canonical file extension for m, or "" when unknown.
func (m MediaType) Extension() string {
	for ext, mt := range extensionMediaTypes {
		if mt == m {
			return ext
		}
	}
	return ""
}

// ParseMediaType normalizes a Content-Type header value.
// Parameters such as charset are dropped, so "text/plain; charset=utf-8" becomes text/plain.
// The result is not checked for support.
func ParseMediaType(contentType string) MediaType {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return MediaType(strings.ToLower(strings.TrimSpace(contentType)))
	}
	return MediaType(mt)
}

// MediaTypeFromFilename maps a file extension onto a recognized media type.
// It returns "" when the extension is unknown.
func MediaTypeFromFilename(name string) MediaType {
	return extensionMediaTypes[strings.ToLower(filepath.Ext(name))]
}

// ResolveMediaType picks the media type for an upload.
// The declared Content-Type wins when it is recognized; browsers often send
// application/octet-stream, in which case the file extension decides.
func ResolveMediaType(contentType, filename string) MediaType {
	declared := ParseMediaType(contentType)
	if declared.IsSupported() {
		return declared
	}
	if byExt := MediaTypeFromFilename(filename); byExt != "" {
		return byExt
	}
	return declared
}
