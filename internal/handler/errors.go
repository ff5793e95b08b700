package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/pkordes/erj-report/internal/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// errBadRequest marks input rejected before reaching the service layer:
// a malformed path or query parameter.
var errBadRequest = errors.New("bad request")

// errTooLarge marks a request body that exceeded the configured limit.
var errTooLarge = errors.New("request body too large")

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the client has gone away; nothing left to report to.
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and error body.
// Unknown errors are logged and reported as 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: detail})
}

func classify(err error) (int, ErrorDetail) {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: fe.Message, Field: fe.Field}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, ErrorDetail{Code: "bad_request", Message: unwrapMessage(err)}
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorDetail{Code: "payload_too_large", Message: errTooLarge.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorDetail{Code: "not_found", Message: unwrapMessage(err)}
	case errors.Is(err, domain.ErrReorderRejected):
		return http.StatusConflict, ErrorDetail{Code: "reorder_rejected", Message: unwrapMessage(err)}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrorDetail{Code: "conflict", Message: unwrapMessage(err)}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorDetail{Code: "forbidden", Message: unwrapMessage(err)}
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable, ErrorDetail{Code: "persistence_failure", Message: unwrapMessage(err)}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: "internal server error"}
	}
}

// opPrefix matches the "pkg.Type.Op: " prefixes added while wrapping.
var opPrefix = regexp.MustCompile(`^(?:[a-z]+\.[A-Za-z]+\.[A-Za-z]+: )+`)

// unwrapMessage extracts the human-readable part of a wrapped error.
// e.g. "service.ReportService.Get: repo.ReportRepo.Get: not found" → "not found"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	return opPrefix.ReplaceAllString(err.Error(), "")
}
