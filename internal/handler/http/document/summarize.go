package document

import (
	"net/http"

	"docscribe/internal/handler/http/pathutil"
	"docscribe/internal/handler/http/respond"
	"docscribe/internal/infra/summarizer"
	docUC "docscribe/internal/usecase/document"
)

type SummarizeHandler struct{ Svc *docUC.Service }

// ServeHTTP re-summarizes a stored document with optional
// {"summaryOptions": {...}} overrides and returns the updated document.
func (h SummarizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		SummaryOptions *summarizer.Overrides `json:"summaryOptions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	doc, err := h.Svc.Resummarize(r.Context(), id, req.SummaryOptions)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(doc))
}

type DownloadHandler struct{ Svc *docUC.Service }

// ServeHTTP sends the summary as a text/plain attachment named after the upload.
func (h DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	doc, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.Attachment(w, summaryFileName(doc.OriginalName), "text/plain; charset=utf-8", []byte(doc.Summary))
}
