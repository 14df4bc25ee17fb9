package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caseflow/caseflow/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates the three internal/model error kinds into their
// HTTP status, and anything else into a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var paramErr *model.ParameterError
	var notFoundErr *model.NotFoundError
	var stepErr *model.StepExecutionError
	switch {
	case errors.As(err, &paramErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &stepErr):
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
