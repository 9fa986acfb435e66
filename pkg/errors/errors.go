// Package errors defines the closed error taxonomy shared by validators,
// providers and handlers. Callers dispatch on the Code discriminant instead of
// parsing message strings, and no backend-specific error type crosses the
// provider boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
)

// Code identifies an error variant.
type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeNotFound       Code = "NOT_FOUND"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeForbidden      Code = "FORBIDDEN"
	CodeDuplicate      Code = "DUPLICATE"
	CodeQuotaExceeded  Code = "QUOTA_EXCEEDED"
	CodeConflict       Code = "CONFLICT"
	CodeRateLimited    Code = "RATE_LIMITED"
	CodeProvider       Code = "PROVIDER_ERROR"
	CodeConfiguration  Code = "CONFIGURATION_ERROR"
	CodeNotImplemented Code = "NOT_IMPLEMENTED"
	CodeInternal       Code = "INTERNAL_ERROR"
)

// Error is the single tagged error type used across the core. Meta carries the
// variant-specific context (field, entity_type, limit, ...).
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithMeta adds a meta value and returns the error for chaining.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = value
	return e
}

// WithCause attaches the underlying error without exposing it across the
// provider boundary.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidation reports that field failed a validation rule.
func NewValidation(field, message string) *Error {
	return newError(CodeValidation, message).WithMeta("field", field)
}

// NewNotFound reports that the referenced record does not exist. Cross-tenant
// access uses the same variant so callers cannot probe other tenants' data.
func NewNotFound(entityType, id string) *Error {
	return newError(CodeNotFound, fmt.Sprintf("%s %q not found", entityType, id)).
		WithMeta("entity_type", entityType).
		WithMeta("id", id)
}

// NewUnauthorized reports a missing or unusable caller identity.
func NewUnauthorized(reason string) *Error {
	return newError(CodeUnauthorized, reason)
}

// NewForbidden reports that an authenticated caller lacks the required role.
func NewForbidden(action, resource, role string) *Error {
	return newError(CodeForbidden, fmt.Sprintf("role %s may not %s %s", role, action, resource)).
		WithMeta("action", action).
		WithMeta("resource", resource).
		WithMeta("role", role)
}

// NewDuplicate reports a uniqueness violation on field/value.
func NewDuplicate(field, value string) *Error {
	return newError(CodeDuplicate, fmt.Sprintf("%s %q already exists", field, value)).
		WithMeta("field", field).
		WithMeta("value", value)
}

// NewQuotaExceeded reports that a tenant resource limit would be exceeded.
func NewQuotaExceeded(metric string, limit, requested int) *Error {
	return newError(CodeQuotaExceeded, fmt.Sprintf("%s quota exceeded: limit %d, requested %d", metric, limit, requested)).
		WithMeta("metric", metric).
		WithMeta("limit", limit).
		WithMeta("requested", requested)
}

// NewConflict reports a state conflict (e.g. an illegal status transition).
func NewConflict(message string) *Error {
	return newError(CodeConflict, message)
}

// NewRateLimited reports that the backend throttled the request.
func NewRateLimited(message string) *Error {
	return newError(CodeRateLimited, message)
}

// NewProvider reports an operational backend failure (network, timeout,
// unexpected response).
func NewProvider(message string) *Error {
	return newError(CodeProvider, message)
}

// NewConfiguration reports invalid or missing provider configuration.
func NewConfiguration(message string) *Error {
	return newError(CodeConfiguration, message)
}

// NewNotImplemented reports that the active provider does not support the
// operation. Write calls on read-only providers fail with this, never no-op.
func NewNotImplemented(operation string) *Error {
	return newError(CodeNotImplemented, fmt.Sprintf("%s is not supported by this provider", operation)).
		WithMeta("operation", operation)
}

// NewInternal reports an unexpected failure inside the core.
func NewInternal(message string) *Error {
	return newError(CodeInternal, message)
}

// NewInvalidVocabulary builds the validation error for a value outside a closed
// vocabulary. The message enumerates the full legal set so correction is
// self-service.
func NewInvalidVocabulary(field, value string, legal []string) *Error {
	return NewValidation(field, fmt.Sprintf("%q is not a valid %s. Valid values: %s", value, field, strings.Join(legal, ", "))).
		WithMeta("value", value)
}

// As extracts a taxonomy error from err, if present.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of err, or CodeInternal for untagged errors.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

func is(err error, code Code) bool {
	return CodeOf(err) == code
}

func IsValidation(err error) bool     { return is(err, CodeValidation) }
func IsNotFound(err error) bool       { return is(err, CodeNotFound) }
func IsUnauthorized(err error) bool   { return is(err, CodeUnauthorized) }
func IsForbidden(err error) bool      { return is(err, CodeForbidden) }
func IsDuplicate(err error) bool      { return is(err, CodeDuplicate) }
func IsConflict(err error) bool       { return is(err, CodeConflict) }
func IsProvider(err error) bool       { return is(err, CodeProvider) }
func IsNotImplemented(err error) bool { return is(err, CodeNotImplemented) }

// HTTPStatus maps a code to its transport status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicate, CodeConflict:
		return http.StatusConflict
	case CodeQuotaExceeded, CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNotImplemented:
		return http.StatusNotImplemented
	case CodeProvider:
		return http.StatusServiceUnavailable
	case CodeConfiguration, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// FromHTTPStatus maps a backend response status into the taxonomy. Used by the
// HTTP provider so remote failures surface as tagged errors.
func FromHTTPStatus(status int, message string) *Error {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return NewValidation("request", message)
	case status == http.StatusUnauthorized:
		return NewUnauthorized(message)
	case status == http.StatusForbidden:
		return newError(CodeForbidden, message)
	case status == http.StatusNotFound:
		return newError(CodeNotFound, message)
	case status == http.StatusConflict:
		return NewConflict(message)
	case status == http.StatusTooManyRequests:
		return NewRateLimited(message)
	case status >= 500:
		return NewProvider(message)
	default:
		return NewProvider(fmt.Sprintf("unexpected status %d: %s", status, message))
	}
}

// ToHTTPError converts err into an ectoerror HTTPError for the echo error
// handler. Untagged errors become a 500 with a generic message.
func (e *Error) ToHTTPError() *httperror.HTTPError {
	he := httperror.NewHTTPError(HTTPStatus(e.Code), e.Message).AddMetaValue("code", string(e.Code))
	for k, v := range e.Meta {
		he = he.AddMetaValue(k, v)
	}
	return he
}

// Response is the uniform wire shape for a taxonomy error.
type Response struct {
	Error string         `json:"error"`
	Type  string         `json:"type"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// FormatResponse maps any error to the uniform response shape. This is the
// only place presentation logic touches the taxonomy.
func FormatResponse(err error) Response {
	if e, ok := As(err); ok {
		return Response{Error: e.Message, Type: string(e.Code), Meta: e.Meta}
	}
	return Response{Error: "internal error", Type: string(CodeInternal)}
}
