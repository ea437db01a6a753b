package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joinery-data/joinery/internal/model"
)

// listEnvelope is the body of every collection response.
type listEnvelope struct {
	Data    []model.Record `json:"data"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// errorBody is the body of every error response. Error carries the
// machine-readable code, Fields the per-field validation messages.
type errorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func renderJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func renderError(w http.ResponseWriter, statusCode int, code, message string) {
	renderJSON(w, statusCode, &errorBody{Error: code, Message: message})
}

func renderNotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "resource not found"
	}
	renderError(w, http.StatusNotFound, "not_found", message)
}

func renderValidationError(w http.ResponseWriter, verr *model.ValidationError) {
	fields := make(map[string][]string, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields[fe.Field] = append(fields[fe.Field], fe.Message)
	}
	renderJSON(w, http.StatusBadRequest, &errorBody{
		Error:   "validation_failed",
		Message: "the request contains invalid data",
		Fields:  fields,
	})
}

// renderStoreError maps data-access failures onto HTTP statuses:
// validation 400, constraint conflicts 409, operations an entity kind
// does not support 405, anything else 500.
func renderStoreError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		renderValidationError(w, verr)
	case model.IsUniqueViolation(err):
		renderError(w, http.StatusConflict, "conflict", err.Error())
	case model.IsForeignKeyViolation(err):
		renderError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, model.ErrNotNullViolation):
		renderError(w, http.StatusBadRequest, "bad_request", err.Error())
	case model.IsUnsupported(err):
		renderError(w, http.StatusMethodNotAllowed, "method_not_allowed", err.Error())
	default:
		renderError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
