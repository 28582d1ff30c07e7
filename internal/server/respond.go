package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/roadmap/pkg/errors"
)

// errRateLimited is only produced by the rate limiter.
const errRateLimited errs.Code = "RATE_LIMITED"

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string       `json:"error"`
	Code      errs.Code    `json:"code"`
	RequestID string       `json:"requestId,omitempty"`
	Issues    []errs.Issue `json:"issues,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidGraph, errs.ErrCodeInvalidAlgorithm,
		errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeNodeNotFound, errs.ErrCodeEdgeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeConflict, errs.ErrCodeNothingToUndo, errs.ErrCodeNothingToRedo:
		return http.StatusConflict
	case errs.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err as a JSON error. Errors without a code are
// internal: their text is not leaked to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	body := errorBody{
		Error:     clientMessage(err),
		Code:      code,
		RequestID: RequestIDFromContext(r.Context()),
	}
	if code == "" {
		body.Code = errs.ErrCodeInternal
		body.Error = "internal error"
	}
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		body.Error = "graph validation failed"
		body.Issues = ve.Issues
	}
	writeJSON(w, statusFor(body.Code), body)
}

// clientMessage is the coded error's message followed by its cause, if any.
func clientMessage(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + errs.UserMessage(e.Cause)
	}
	return errs.UserMessage(err)
}

// decodeJSON reads a JSON body into v. Malformed bodies are INVALID_INPUT.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func errNotFound(r *http.Request) error {
	return errs.New(errs.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}
