// Package handlers implements the HTTP handlers of the insight API.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/turtacn/KeyIP-Insight/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, statusCode int, code errors.ErrorCode, message string) {
	writeJSON(w, statusCode, ErrorResponse{Code: string(code), Message: message})
}

// WriteAppError maps an error to its HTTP status. Messages of internal
// failures are masked.
func WriteAppError(w http.ResponseWriter, err error) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		writeError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "internal server error")
		return
	}
	status := ae.HTTPStatus()
	msg := ae.Message
	if status >= http.StatusInternalServerError && !errors.IsRemoteFailure(err) {
		msg = "internal server error"
	}
	writeError(w, status, ae.Code, msg)
}

// decodeJSON reads a JSON body of at most limit bytes into dst. Unknown
// fields are rejected.
func decodeJSON(r *http.Request, limit int64, dst interface{}) error {
	if limit <= 0 {
		limit = 1 << 20
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}

//Personal.AI order the ending
