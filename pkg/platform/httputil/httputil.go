// Package httputil centralizes JSON response writing so every handler speaks
// the same wire format.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "quire/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes the standard mutation acknowledgement body.
func WriteSuccess(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// WriteError maps a coded error to its HTTP status and a {"error": ...} body.
// Internal errors always render the generic message so storage detail never
// reaches clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := dErrors.MessageOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		message = "Internal server error"
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{"error": message})
}

// Decode reads a JSON request body into v, returning a bad-request coded
// error on malformed input.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid request body")
	}
	return nil
}
