package document

import (
	"net/http"

	"docscribe/internal/handler/http/pathutil"
	"docscribe/internal/handler/http/respond"
	docUC "docscribe/internal/usecase/document"
)

type ShareHandler struct{ Svc *docUC.Service }

// ServeHTTP issues the share token for a document. Repeated calls return the same token.
func (h ShareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.Svc.Share(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, ShareDTO{Token: token})
}

type SharedHandler struct{ Svc *docUC.Service }

func (h SharedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Svc.GetShared(r.Context(), r.PathValue("token"))
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, SharedDTO{
		OriginalName: doc.OriginalName,
		Summary:      doc.Summary,
		Provenance:   string(doc.Provenance),
		UploadedAt:   doc.UploadedAt,
	})
}
