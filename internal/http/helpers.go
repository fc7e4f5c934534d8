package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"housebudget/internal/ledger"
	"housebudget/internal/log"
	"housebudget/internal/month"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks malformed requests that never reached the ledger.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// statusFor maps the ledger error classes onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err. Internal errors are logged
// and their message is not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	errType := ledger.ErrorType(err)
	msg := err.Error()
	if status == http.StatusBadRequest {
		errType = log.ErrorTypeValidation
	}
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.NewFields().WithError(err).WithErrorType(errType).ToSlice()...)
		msg = "internal error"
	}
	NewJSONResponse().Status(status).Error(msg, errType).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

// decodeJSON reads one JSON object into dst, rejecting unknown fields,
// trailing data and bodies over maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return badRequest("request body exceeds %d bytes", tooLarge.Limit)
		}
		return badRequest("invalid JSON: %v", err)
	}
	if dec.More() {
		return badRequest("request body must hold a single JSON object")
	}
	return nil
}

// urlMonth returns the validated {month} path parameter.
func urlMonth(r *http.Request) (string, error) {
	m := chi.URLParam(r, "month")
	if err := month.Validate(m); err != nil {
		return "", badRequest("invalid month %q: want YYYY-MM", m)
	}
	return m, nil
}

func urlID(r *http.Request) string {
	return sanitizeInput(chi.URLParam(r, "id"))
}

// sanitizeInput removes control characters other than tab and newlines,
// and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
