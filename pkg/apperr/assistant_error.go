package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeInvalidInput = "INVALID_INPUT"

	// Calendar path soft failures. They reach the user as agent text and
	// only appear in logs as error_code.
	CodeNotConnected            = "NOT_CONNECTED"
	CodeClassificationAmbiguous = "CLASSIFICATION_AMBIGUOUS"
	CodeExtractionInvalid       = "EXTRACTION_INVALID"

	CodeUpstreamFailure = "UPSTREAM_FAILURE"
	CodeOAuthFailed     = "OAUTH_FAILED"

	CodeInternalError = "INTERNAL_ERROR"
	CodeConfigError   = "CONFIG_ERROR"
)

// AppError carries a code and HTTP status. Message is shown to clients
// only for 4xx statuses.
type AppError struct {
	Code    string
	Message string
	Status  int
	// Field names the offending request field of an INVALID_INPUT error.
	Field string
	Err   error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// IsClientError reports whether the error is the caller's fault (4xx).
func (e *AppError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

func BadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

func InvalidInput(field, message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message, Status: http.StatusBadRequest, Field: field}
}

func UpstreamFailure(service string, err error) *AppError {
	return &AppError{
		Code:    CodeUpstreamFailure,
		Message: "upstream failure: " + service,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func OAuthFailed(provider string, err error) *AppError {
	return &AppError{
		Code:    CodeOAuthFailed,
		Message: "OAuth failed for " + provider,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func InternalWithError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func ConfigError(message string) *AppError {
	return &AppError{Code: CodeConfigError, Message: message, Status: http.StatusInternalServerError}
}

// AsAppError finds an AppError in err's chain, or wraps err as INTERNAL_ERROR.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalWithError(err)
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
