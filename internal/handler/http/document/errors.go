package document

import (
	"errors"
	"net/http"

	"docscribe/internal/domain/entity"
	"docscribe/internal/handler/http/pathutil"
	"docscribe/internal/infra/summarizer"
	docUC "docscribe/internal/usecase/document"
)

var errFileRequired = badRequest(errors.New(`file is required: send it in the multipart field "file"`))

// badRequestError marks malformed request input such as an unreadable JSON body.
type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &badRequestError{err: err} }

// statusFor maps use case errors onto HTTP status codes. Anything
// unrecognised is a 500 and is masked by respond.SafeError.
func statusFor(err error) int {
	var (
		maxErr *http.MaxBytesError
		valErr *entity.ValidationError
		optErr *summarizer.OptionError
		reqErr *badRequestError
	)
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &valErr),
		errors.As(err, &optErr),
		errors.Is(err, docUC.ErrInvalidDocumentID),
		errors.Is(err, pathutil.ErrInvalidID),
		errors.Is(err, docUC.ErrNoContent),
		errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, docUC.ErrDocumentNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
