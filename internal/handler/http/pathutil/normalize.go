package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the dynamic routes, most specific first.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/documents/\d+$`), Template: "/documents/:id"},
	{Pattern: regexp.MustCompile(`^/documents/\d+/content$`), Template: "/documents/:id/content"},
	{Pattern: regexp.MustCompile(`^/documents/\d+/summarize$`), Template: "/documents/:id/summarize"},
	{Pattern: regexp.MustCompile(`^/documents/\d+/download$`), Template: "/documents/:id/download"},
	{Pattern: regexp.MustCompile(`^/documents/\d+/share$`), Template: "/documents/:id/share"},
	{Pattern: regexp.MustCompile(`^/shared/[^/]+$`), Template: "/shared/:token"},
}

// NormalizePath maps dynamic URL paths onto their route template so metrics
// labels stay bounded. Unknown and static paths are returned unchanged.
//
// Examples:
//
//	NormalizePath("/documents/123")          // "/documents/:id"
//	NormalizePath("/documents/7/download")   // "/documents/:id/download"
//	NormalizePath("/shared/4f1c...")         // "/shared/:token"
//	NormalizePath("/history?limit=5")        // "/history"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization: the templates plus the static endpoints
// (/documents, /documents/text, /history, /health, /ready, /live, /metrics).
func GetExpectedCardinality() int {
	return len(pathPatterns) + 7
}
