package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeHTTP            ErrorType = "HTTP_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypePartialWrite    ErrorType = "PARTIAL_WRITE"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeRequiredField    ErrorCode = "REQUIRED_FIELD"
	ErrCodeReadOnlyField    ErrorCode = "READ_ONLY_FIELD"
	ErrCodeUnknownField     ErrorCode = "UNKNOWN_FIELD"
	ErrCodeInvalidValue     ErrorCode = "INVALID_VALUE"
	ErrCodeEmptySelection   ErrorCode = "EMPTY_SELECTION"
	ErrCodeFormClosed       ErrorCode = "FORM_CLOSED"

	ErrCodeMissingToken  ErrorCode = "MISSING_TOKEN"
	ErrCodeTokenExpired  ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenRejected ErrorCode = "TOKEN_REJECTED"

	ErrCodeRequestFailed  ErrorCode = "REQUEST_FAILED"
	ErrCodeDecodeFailed   ErrorCode = "DECODE_FAILED"
	ErrCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	ErrCodeNotificationResolved ErrorCode = "NOTIFICATION_RESOLVED"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	ErrCodeConfirmIncomplete    ErrorCode = "CONFIRM_INCOMPLETE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return e.GetDetailedMessage()
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so sentinels compare equal to fresh copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Fields lists the offending field names in order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		fields[i] = err.Field
	}
	return fields
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewValidationFieldErrors(ValidationError{Field: field, Message: message, Code: string(code)})
}

func NewValidationFieldErrors(errs ...ValidationError) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    ValidationErrors{Errors: errs},
	}
}

func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewHTTPError wraps a non-2xx backend response; message is already human readable.
func NewHTTPError(statusCode int, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeHTTP,
		Code:       ErrCodeRequestFailed,
		Message:    message,
		StatusCode: statusCode,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrMissingToken  = NewUnauthenticatedError("not signed in", ErrCodeMissingToken)
	ErrTokenExpired  = NewUnauthenticatedError("session has expired, sign in again", ErrCodeTokenExpired)
	ErrTokenRejected = NewUnauthenticatedError("session was rejected by the server, sign in again", ErrCodeTokenRejected)

	ErrEmptySelection       = NewValidationError("no rows selected", ErrCodeEmptySelection)
	ErrFormClosed           = NewValidationError("form is not open", ErrCodeFormClosed)
	ErrNotificationResolved = NewConflictError("notification has already been resolved", ErrCodeNotificationResolved)
	ErrInvalidTransition    = NewConflictError("status transition not allowed", ErrCodeInvalidTransition)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsUnauthenticated reports whether err means the user has to sign in again.
func IsUnauthenticated(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeUnauthenticated
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
