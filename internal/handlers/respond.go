// Package handlers contains the HTTP handler groups for the EventPress
// server: the admin JSON API, the auth endpoints, and the public pages.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate checks request DTOs at the boundary, before any store call.
var validate = validator.New(validator.WithRequiredStructEnabled())

// maxBodySize caps JSON request bodies (images go through the multipart
// upload endpoint, everything else is small).
const maxBodySize = 1 << 20

// writeJSON writes a JSON response with the given status code. API
// responses must never be served stale by an intermediary, so caching is
// disabled outright.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body in the shape the admin console
// expects: {"error": "..."}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON parses and validates a JSON request body into dst.
// Unknown fields and malformed payloads are rejected before any store
// operation runs.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid body: %d field(s) failed validation", len(verrs))
		}
		return fmt.Errorf("invalid body: %w", err)
	}
	return nil
}
