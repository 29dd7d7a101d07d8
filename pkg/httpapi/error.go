package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// StatusFor maps a BaseError code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case serrors.CodeNotFound:
		return http.StatusNotFound
	case serrors.CodeConflict:
		return http.StatusConflict
	case serrors.CodeForbidden, serrors.CodeQuotaExceeded:
		return http.StatusForbidden
	case serrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case serrors.CodeValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError renders err in the envelope shape. Errors that are not a
// *serrors.BaseError are logged and reported as a generic INTERNAL failure.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var base *serrors.BaseError
	if !errors.As(err, &base) {
		logger(r).WithError(err).Error("unhandled service error")
		_ = WriteError(w, http.StatusInternalServerError, serrors.CodeInternal, "internal server error", nil)
		return
	}
	status := StatusFor(base.Code)
	if status == http.StatusInternalServerError {
		logger(r).WithError(err).Error("service configuration error")
	}
	_ = WriteError(w, status, base.Code, base.Message, base.Meta)
}

// DecodeJSON reads a single JSON document into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return serrors.NewValidationError(serrors.ValidationErrors{"body": "required"})
		}
		return serrors.NewValidationError(serrors.ValidationErrors{"body": err.Error()})
	}
	return nil
}

func logger(r *http.Request) *logrus.Entry {
	if r == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return composables.TryUseLogger(r.Context(), logrus.NewEntry(logrus.StandardLogger()))
}
