// Package httpx provides the small response helpers shared by the HTTP
// function entry points.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/storeops/faxbridge/internal/services"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response.", "error", err)
	}
}

// WriteError maps a service error onto the HTTP taxonomy and writes a
// structured {error, details} body.
func WriteError(w http.ResponseWriter, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		configErr     *services.ConfigError
		dispatchErr   *services.DispatchError
	)
	switch {
	case errors.As(err, &validationErr):
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_request", Details: err.Error()})
	case errors.As(err, &notFoundErr):
		WriteJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Details: err.Error()})
	case errors.As(err, &configErr):
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "not_configured", Details: err.Error()})
	case errors.As(err, &dispatchErr):
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "dispatch_failed", Details: err.Error()})
	default:
		slog.Error("Unclassified request failure.", "error", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Details: "request failed"})
	}
}

// MethodNotAllowed rejects anything but the given method.
func MethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	WriteJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Details: "use " + allowed})
}

// DecodeJSON parses the request body into v, writing a 400 and returning
// false on malformed input.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json", Details: "could not parse request body"})
		return false
	}
	return true
}
