package document

import (
	"net/http"

	docUC "docscribe/internal/usecase/document"
)

// Register registers the document routes on mux. uploadLimit wraps the
// routes that call the summarization provider; pass nil to leave them unlimited.
func Register(mux *http.ServeMux, svc *docUC.Service, uploadLimit func(http.Handler) http.Handler) {
	if uploadLimit == nil {
		uploadLimit = func(h http.Handler) http.Handler { return h }
	}

	mux.Handle("POST /documents", uploadLimit(UploadHandler{svc}))
	mux.Handle("POST /documents/text", uploadLimit(UploadTextHandler{svc}))

	mux.Handle("GET /documents", ListHandler{svc})
	mux.Handle("GET /documents/{id}", GetHandler{svc})
	mux.Handle("GET /documents/{id}/content", ContentHandler{svc})
	mux.Handle("POST /documents/{id}/summarize", uploadLimit(SummarizeHandler{svc}))
	mux.Handle("GET /documents/{id}/download", DownloadHandler{svc})
	mux.Handle("POST /documents/{id}/share", ShareHandler{svc})
	mux.Handle("DELETE /documents/{id}", DeleteHandler{svc})

	mux.Handle("GET /shared/{token}", SharedHandler{svc})
	mux.Handle("GET /history", HistoryHandler{svc})
}
