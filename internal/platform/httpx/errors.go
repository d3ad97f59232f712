package httpx

import (
	"errors"
	"net/http"

	"github.com/relaycrm/relay/internal/shared"
)

// Problemer lets domain errors carry their own status and reason code.
type Problemer interface {
	error
	ProblemStatus() int
	ProblemCode() string
	ProblemDetail() string
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var p Problemer
	switch {
	case errors.As(err, &p):
		Problem(w, p.ProblemStatus(), p.ProblemCode(), p.ProblemDetail())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, shared.ErrEmailTaken):
		Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusBadRequest, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "INTERNAL_ERROR", "")
	}
}
