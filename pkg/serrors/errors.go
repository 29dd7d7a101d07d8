package serrors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeQuotaExceeded     = "RESOURCE_LIMIT_REACHED"
	CodeConfigurationErr  = "CONFIGURATION_ERROR"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInternal          = "INTERNAL"
	metaFieldKey          = "field"
	metaResourceKey       = "resource"
	metaCurrentKey        = "current"
	metaMaxKey            = "max"
	validationFieldPrefix = "field."
)

// Sentinels for errors.Is. Any BaseError matches the sentinel carrying the same code.
var (
	ErrNotFound         = NewError(CodeNotFound, "not found", "Errors.NotFound")
	ErrConflict         = NewError(CodeConflict, "conflict", "Errors.Conflict")
	ErrForbidden        = NewError(CodeForbidden, "forbidden", "Errors.Forbidden")
	ErrUnauthenticated  = NewError(CodeUnauthenticated, "not authenticated", "Errors.Unauthenticated")
	ErrQuotaExceeded    = NewError(CodeQuotaExceeded, "resource limit reached", "Errors.QuotaExceeded")
	ErrConfiguration    = NewError(CodeConfigurationErr, "configuration error", "Errors.Configuration")
	ErrValidationFailed = NewError(CodeValidationFailed, "validation failed", "Errors.ValidationFailed")
)

// BaseError is the error type every service returns for expected failures.
type BaseError struct {
	Code      string
	Message   string
	LocaleKey string
	Meta      map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return e.Message
}

func (e *BaseError) Is(target error) bool {
	var t *BaseError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMeta returns a copy of the error with the given entries merged into Meta.
func (e *BaseError) WithMeta(meta map[string]string) *BaseError {
	out := *e
	out.Meta = make(map[string]string, len(e.Meta)+len(meta))
	maps.Copy(out.Meta, e.Meta)
	maps.Copy(out.Meta, meta)
	return &out
}

func NotFound(format string, args ...any) *BaseError {
	return NewError(CodeNotFound, fmt.Sprintf(format, args...), ErrNotFound.LocaleKey)
}

// Conflict reports a uniqueness violation. field names the offending input field.
func Conflict(field, message string) *BaseError {
	return NewError(CodeConflict, message, ErrConflict.LocaleKey).
		WithMeta(map[string]string{metaFieldKey: field})
}

func Forbidden(message string) *BaseError {
	return NewError(CodeForbidden, message, ErrForbidden.LocaleKey)
}

func Unauthenticated(message string) *BaseError {
	return NewError(CodeUnauthenticated, message, ErrUnauthenticated.LocaleKey)
}

func QuotaExceeded(resource string, current, max int) *BaseError {
	return NewError(
		CodeQuotaExceeded,
		fmt.Sprintf("%s limit reached (%d/%d)", resource, current, max),
		ErrQuotaExceeded.LocaleKey,
	).WithMeta(map[string]string{
		metaResourceKey: resource,
		metaCurrentKey:  strconv.Itoa(current),
		metaMaxKey:      strconv.Itoa(max),
	})
}

func Configuration(format string, args ...any) *BaseError {
	return NewError(CodeConfigurationErr, fmt.Sprintf(format, args...), ErrConfiguration.LocaleKey)
}

// ConflictField returns the field hint of a conflict error, if any.
func ConflictField(err error) string {
	var base *BaseError
	if !errors.As(err, &base) || base.Code != CodeConflict {
		return ""
	}
	return base.Meta[metaFieldKey]
}

// ValidationErrors maps a field name to a human readable reason.
type ValidationErrors map[string]string

// NewValidationError folds field errors into a single BaseError.
func NewValidationError(fields ValidationErrors) *BaseError {
	meta := make(map[string]string, len(fields))
	keys := make([]string, 0, len(fields))
	for field, reason := range fields {
		meta[validationFieldPrefix+field] = reason
		keys = append(keys, field)
	}
	slices.Sort(keys)
	msg := "validation failed"
	if len(keys) > 0 {
		msg = fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
	}
	return NewError(CodeValidationFailed, msg, ErrValidationFailed.LocaleKey).WithMeta(meta)
}

// ProcessValidatorErrors converts validator output into field => reason pairs.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		reason := fe.Tag()
		if fe.Param() != "" {
			reason = fe.Tag() + "=" + fe.Param()
		}
		out[fe.Field()] = reason
	}
	return out
}

// FromValidator wraps a validator error; other errors pass through unchanged.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return NewValidationError(ProcessValidatorErrors(ve))
	}
	return err
}
