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
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody      ErrorCode = "INVALID_REQUEST_BODY"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	ErrCodeActionProhibited   ErrorCode = "ACTION_PROHIBITED"
	ErrCodeDeleteUserError    ErrorCode = "DELETE_USER_ERROR"
	ErrCodeDefault            ErrorCode = "DEFAULT"
	ErrCodePrimaryAdminCheck  ErrorCode = "PRIMARY_ADMIN_CHECK_FAILED"
	ErrCodeAccessRestricted   ErrorCode = "ACCESS_PROHIBITED"
	ErrCodeInvalidPermissions ErrorCode = "INVALID_PERMISSIONS"

	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidCred  ErrorCode = "INVALID_CRED"

	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
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
			return validationErrors.Errors[0].Message
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

// WithCause returns a copy so the shared sentinel values stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is matches on code so wrapped copies still satisfy errors.Is against the sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func newAppError(t ErrorType, status int, message string, code ErrorCode) *AppError {
	return &AppError{Type: t, Code: code, Message: message, StatusCode: status}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, code)
}

// NewValidationFieldErrors reports one entry per offending field under details.errors.
func NewValidationFieldErrors(errs []ValidationError) *AppError {
	e := NewValidationError("Validation failed", ErrCodeValidationFailed)
	e.Details = ValidationErrors{Errors: errs}
	return e
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, code)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, code)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, code)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, code)
}

func NewInternalError(message string, code ErrorCode, cause error) *AppError {
	e := newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, code)
	e.Cause = cause
	return e
}

var (
	ErrUserNotFound      = NewNotFoundError("We could not find what you're looking for", ErrCodeUserNotFound)
	ErrEmailTaken        = NewConflictError("Uh-oh! This email is already registered", ErrCodeEmailTaken)
	ErrActionProhibited  = NewForbiddenError("The requested action has been restricted as a security measure", ErrCodeActionProhibited)
	ErrAccessProhibited  = NewForbiddenError("You do not have permission to access this resource", ErrCodeAccessRestricted)
	ErrDeleteUser        = NewInternalError("Oops! Something went wrong. We encountered an issue while trying to delete the user", ErrCodeDeleteUserError, nil)
	ErrDefault           = NewValidationError("Something went wrong :/", ErrCodeDefault)
	ErrPrimaryAdminCheck = NewInternalError("Could not verify primary admin status", ErrCodePrimaryAdminCheck, nil)
	ErrInvalidBody       = NewValidationError("invalid request body", ErrCodeInvalidBody)

	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrUnauthorized       = NewUnauthorizedError("Your session has expired or the token is invalid", ErrCodeUnauthorized)
	ErrInvalidCredentials = NewUnauthorizedError("The email or password provided is incorrect", ErrCodeInvalidCred)

	ErrRateLimited = newAppError(ErrorTypeRateLimited, http.StatusTooManyRequests, "Too many requests, slow down", ErrCodeRateLimited)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
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
