package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"troop-fundraiser/models"
	"troop-fundraiser/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ writeJSON: Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

// writeUnavailable is used by admin list endpoints when data cannot be loaded
func writeUnavailable(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: message, Retry: true})
}

// writeServiceError maps domain errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, op string, err error) {
	if fields, ok := models.AsValidationErrors(err); ok {
		log.Printf("❌ %s: validation failed: %v", op, err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Fields: fields})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrScoutNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrLineNotFound),
		errors.Is(err, service.ErrImageNotFound),
		errors.Is(err, service.ErrNoConfirmation):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrSlugTaken),
		errors.Is(err, models.ErrSlugImmutable),
		errors.Is(err, service.ErrCheckoutInProgress):
		status = http.StatusConflict
	case errors.Is(err, models.ErrCampaignClosed):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		log.Printf("❌ %s: %v", op, err)
		writeError(w, status, "internal error")
		return
	}
	log.Printf("⚠️ %s: %v", op, err)
	writeError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// pathParam returns the path segment following prefix, e.g. the id in /admin/scouts/{id}/flyer
func pathParam(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
