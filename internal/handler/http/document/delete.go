package document

import (
	"net/http"

	"docscribe/internal/handler/http/pathutil"
	"docscribe/internal/handler/http/respond"
	docUC "docscribe/internal/usecase/document"
)

type DeleteHandler struct{ Svc *docUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.Message(w, http.StatusOK, "document deleted")
}
