// Package shared holds the JSON response helpers used by every HTTP handler.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "tasklane/pkg/domain-errors"
)

// errorEnvelope is the JSON error body returned by the ops surface.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes the
// error envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		status = http.StatusBadRequest
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeConflict:
		status = http.StatusConflict
	case dErrors.CodeInvariantViolation:
		status = http.StatusUnprocessableEntity
	case dErrors.CodeTimeout:
		status = http.StatusGatewayTimeout
	}
	WriteJSON(w, status, errorEnvelope{Error: errorBody{Code: string(code), Message: err.Error()}})
}
