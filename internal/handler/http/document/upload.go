package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"docscribe/internal/domain/entity"
	"docscribe/internal/handler/http/respond"
	"docscribe/internal/infra/summarizer"
	docUC "docscribe/internal/usecase/document"
)

// multipartMemory is the part of a multipart body kept in memory; the rest spills to temp files.
const multipartMemory = 4 << 20

type UploadHandler struct{ Svc *docUC.Service }

// ServeHTTP accepts a multipart form with a "file" part and an optional
// "summaryOptions" JSON field, and answers 201 with the stored document.
func (h UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if !errors.As(err, &maxErr) {
			err = errFileRequired
		}
		respond.SafeError(w, statusFor(err), err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, errFileRequired)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, entity.MaxUploadBytes+1))
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	opts, err := parseOptionsField(r.FormValue("summaryOptions"))
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	doc, err := h.Svc.UploadFile(r.Context(), docUC.UploadInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Options:     opts,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(doc))
}

type UploadTextHandler struct{ Svc *docUC.Service }

// ServeHTTP accepts {"text": "...", "summaryOptions": {...}} and answers 201.
func (h UploadTextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text           string                `json:"text"`
		SummaryOptions *summarizer.Overrides `json:"summaryOptions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	doc, err := h.Svc.UploadText(r.Context(), req.Text, req.SummaryOptions)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(doc))
}

func parseOptionsField(raw string) (*summarizer.Overrides, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ov summarizer.Overrides
	if err := json.Unmarshal([]byte(raw), &ov); err != nil {
		return nil, badRequest(fmt.Errorf("invalid summaryOptions: %w", err))
	}
	return &ov, nil
}

// decodeJSON decodes a request body. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return badRequest(fmt.Errorf("invalid JSON body: %w", err))
	}
	return nil
}
