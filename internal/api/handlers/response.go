package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"store-service/internal/repository"

	"github.com/go-playground/validator/v10"
)

type apiError struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	writeJSON(w, status, apiError{
		Error:   code,
		Message: message,
		Details: details,
	})
}

// writeRepoError maps the repository error taxonomy onto HTTP statuses.
func writeRepoError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", err.Error(), nil)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, repository.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, "insufficient_stock", err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": err.Error()})
		return false
	}

	if err := dec.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": "extra data after json"})
		return false
	}

	return true
}

// validateStruct runs validator tags over a decoded request body and writes
// a 400 with per-field details on failure. Validation rejects before any
// transaction opens.
func validateStruct(w http.ResponseWriter, validate *validator.Validate, v interface{}) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusInternalServerError, "internal_error", "validation setup failed", nil)
		return false
	}

	details := map[string]string{}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			details[fe.Field()] = fe.Tag()
		}
	}

	writeError(w, http.StatusBadRequest, "validation_failed", "request body failed validation", details)
	return false
}
