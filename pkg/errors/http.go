package errors

import "net/http"

// HTTPStatus maps an error's code to an HTTP status. Unknown and plain errors
// map to 500.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrSignatureInvalid, ErrInvalidArgument:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
