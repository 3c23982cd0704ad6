package httpx

import (
	"net/http"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// StatusFor maps a failure kind to its HTTP status.
func StatusFor(kind shared.Kind) int {
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindAuth:
		return http.StatusUnauthorized
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindProtected:
		return http.StatusConflict
	case shared.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	kind := shared.KindOf(err)
	status := StatusFor(kind)
	Problem(w, status, http.StatusText(status), string(kind), shared.UserSafeMessage(err))
}
