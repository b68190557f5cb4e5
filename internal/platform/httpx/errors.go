package httpx

import (
	"errors"
	"net/http"

	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	code := shared.ErrorCode(err)
	var fieldErrs FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeProblem(w, ProblemDetail{Type: "INVALID_REQUEST", Title: "Validation Failed", Status: http.StatusBadRequest, Fields: fieldErrs})
	case errors.Is(err, shared.ErrNotFound):
		writeProblem(w, ProblemDetail{Type: code, Title: "Not Found", Status: http.StatusNotFound, Detail: err.Error()})
	case errors.Is(err, shared.ErrValidation):
		writeProblem(w, ProblemDetail{Type: code, Title: "Validation Failed", Status: http.StatusUnprocessableEntity, Detail: err.Error()})
	case errors.Is(err, shared.ErrConflict):
		writeProblem(w, ProblemDetail{Type: code, Title: "Conflict", Status: http.StatusConflict, Detail: err.Error()})
	case errors.Is(err, shared.ErrCapacity):
		writeProblem(w, ProblemDetail{Type: code, Title: "Capacity Exhausted", Status: http.StatusConflict, Detail: err.Error()})
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
