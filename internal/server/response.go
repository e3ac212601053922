package server

import (
	"encoding/json"
	"net/http"

	"github.com/opencode-ai/agentcore/internal/sessionerr"
)

// ErrorResponse is the JSON error envelope of spec §6:
// {"error": {"message", "type", "code?"}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error kind (as "type") and message. Code is
// reserved for a future, more granular taxonomy than Kind provides.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeErr converts any error into the spec §6 envelope. Errors that
// aren't a *sessionerr.Error are treated as an opaque internal error,
// since a handler should only ever let sessionerr values escape.
func writeErr(w http.ResponseWriter, err error) {
	se, ok := sessionerr.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Message: err.Error(), Type: "internal_error"},
		})
		return
	}
	writeJSON(w, se.Kind.HTTPStatus(), ErrorResponse{
		Error: ErrorDetail{Message: se.Message, Type: string(se.Kind)},
	})
}

// writeSuccess writes the plain acknowledgement body used by cancel.
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
