package document

import (
	"errors"
	"net/http"
	"strconv"

	"docscribe/internal/handler/http/pathutil"
	"docscribe/internal/handler/http/respond"
	docUC "docscribe/internal/usecase/document"
)

type ListHandler struct{ Svc *docUC.Service }

// ServeHTTP lists every document, newest first.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(docs))
}

type GetHandler struct{ Svc *docUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	respond.JSON(w, http.StatusOK, toDTO(doc))
}

type ContentHandler struct{ Svc *docUC.Service }

// ServeHTTP returns the extracted text. A document without text is a 404.
func (h ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	content, err := h.Svc.GetContent(r.Context(), id)
	if err != nil {
		code := statusFor(err)
		if errors.Is(err, docUC.ErrNoContent) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, ContentDTO{ID: id, Content: content})
}

type HistoryHandler struct{ Svc *docUC.Service }

// ServeHTTP lists processed documents. The optional limit query parameter
// defaults to 20 and is capped at 100.
func (h HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.SafeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	docs, err := h.Svc.History(r.Context(), limit)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(docs))
}
