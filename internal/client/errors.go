package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Service error codes.
const (
	CodeTransport    = "transport"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeNotEditable  = "not_editable"
	CodeConflict     = "conflict"
	CodeValidation   = "validation"
	CodeInternal     = "internal"
	CodeRejected     = "rejected"
)

// ServiceError describes a failed call to the scheduling service.
// StatusCode is zero when no response was received. Kind carries the request
// validation kind (missing_field, invalid_version_mode, ...) on validation errors.
type ServiceError struct {
	Code       string
	Message    string
	Field      string
	Kind       string
	StatusCode int
	Cause      error
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("scheduling service %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("scheduling service %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// ErrorCode returns the ServiceError code in err's chain, or "".
func ErrorCode(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsNotFound reports whether the job did not exist.
func IsNotFound(err error) bool { return ErrorCode(err) == CodeNotFound }

// IsNotEditable reports whether the job had already left the pending state.
func IsNotEditable(err error) bool { return ErrorCode(err) == CodeNotEditable }

// IsUnauthorized reports whether the API token was missing or wrong.
func IsUnauthorized(err error) bool { return ErrorCode(err) == CodeUnauthorized }

// IsTransport reports whether the service could not be reached.
func IsTransport(err error) bool { return ErrorCode(err) == CodeTransport }

// codeForResponse picks the error code for a non-2xx response.
// The body's code wins when it is one clients act on.
func codeForResponse(status int, bodyCode string) string {
	switch bodyCode {
	case CodeNotFound, CodeNotEditable, CodeConflict, CodeValidation, CodeUnauthorized:
		return bodyCode
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CodeUnauthorized
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return CodeValidation
	case status >= http.StatusInternalServerError:
		return CodeInternal
	default:
		return CodeRejected
	}
}
