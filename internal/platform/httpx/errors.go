package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors understood by RespondError.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps err to a status code and writes it as an ErrorBody.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Message(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Message(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Message(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		Message(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Message(w, http.StatusUnauthorized, err.Error())
	default:
		Message(w, http.StatusInternalServerError, "internal error")
	}
}
