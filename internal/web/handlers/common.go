package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akranjan/facemark/internal/recognizer"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondClientError maps recognition client errors to HTTP statuses:
// validation rejections stay 400, everything transport-shaped becomes 502.
func respondClientError(w http.ResponseWriter, err error) {
	var verr *recognizer.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Message)
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
