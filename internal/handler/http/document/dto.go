// Package document provides the HTTP handlers for uploading, summarizing,
// sharing and browsing documents.
package document

import (
	"path/filepath"
	"strings"
	"time"

	"docscribe/internal/domain/entity"
)

// DTO represents the JSON structure for document data transfer.
// The extracted content is served separately by the content endpoint.
type DTO struct {
	ID           int64     `json:"id" example:"1"`
	OriginalName string    `json:"originalName" example:"report.pdf"`
	FileName     string    `json:"fileName" example:"3f1c9a2e-7b1d-4c55-9e0a-1b2c3d4e5f60.pdf"`
	MediaType    string    `json:"mediaType" example:"application/pdf"`
	FileSize     int64     `json:"fileSize" example:"52344"`
	Summary      string    `json:"summary"`
	Provenance   string    `json:"provenance" example:"primary"`
	IsProcessed  bool      `json:"isProcessed"`
	ShareToken   string    `json:"shareToken,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ContentDTO carries the extracted text of a document.
type ContentDTO struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// SharedDTO is the public view of a shared document. It omits the
// share token and internal file name.
type SharedDTO struct {
	OriginalName string    `json:"originalName"`
	Summary      string    `json:"summary"`
	Provenance   string    `json:"provenance"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// ShareDTO is returned when a share token is issued.
type ShareDTO struct {
	Token string `json:"token"`
}

func toDTO(d *entity.Document) DTO {
	return DTO{
		ID:           d.ID,
		OriginalName: d.OriginalName,
		FileName:     d.FileName,
		MediaType:    string(d.MediaType),
		FileSize:     d.FileSize,
		Summary:      d.Summary,
		Provenance:   string(d.Provenance),
		IsProcessed:  d.IsProcessed,
		ShareToken:   d.ShareToken,
		UploadedAt:   d.UploadedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDTOs(docs []*entity.Document) []DTO {
	out := make([]DTO, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDTO(d))
	}
	return out
}

// summaryFileName turns "report.final.pdf" into "report-summary.txt".
func summaryFileName(originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if base == "" || base == "." || base == "/" {
		base = "document"
	}
	return base + "-summary.txt"
}
