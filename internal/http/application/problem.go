package application

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"onboarding/internal/application"
)

// problem is the error body shape, modeled after RFC 7807 problem details.
// The errors map is present only for validation failures.
type problem struct {
	Status int               `json:"status"`
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, problem{Status: status, Detail: detail})
}

func writeMalformed(w http.ResponseWriter) {
	writeProblem(w, http.StatusBadRequest, "Malformed JSON request")
}

// writeError maps domain errors onto the wire taxonomy.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *application.ValidationError

	switch {
	case errors.Is(err, application.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Application not found")
	case errors.Is(err, application.ErrCompleted):
		writeProblem(w, http.StatusConflict, "Application is already completed and cannot be updated")
	case errors.Is(err, application.ErrVersionConflict):
		writeProblem(w, http.StatusConflict, "Application was modified concurrently, retry")
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, problem{
			Status: http.StatusBadRequest,
			Detail: "Validation Failed",
			Errors: validationErr.Violations.Map(),
		})
	default:
		slog.Error("request failed", "error", err)
		writeProblem(w, http.StatusInternalServerError, "internal error")
	}
}
