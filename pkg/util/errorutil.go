package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
}

func NewDuplicateUsername(username string) error {
	return NewDomainError("DUPLICATE_USERNAME", "username already exists", http.StatusConflict,
		map[string]any{"username": username})
}

func NewPasswordMismatch() error {
	return NewDomainError("PASSWORD_MISMATCH", "passwords do not match", http.StatusBadRequest, nil)
}

func NewPasswordTooShort(minLength int) error {
	return NewDomainError("PASSWORD_TOO_SHORT",
		fmt.Sprintf("password must be at least %d characters long", minLength),
		http.StatusBadRequest, map[string]any{"min_length": minLength})
}

func NewUserNotFound() error {
	return NewDomainError("USER_NOT_FOUND", "user not found", http.StatusNotFound, nil)
}

func NewInvalidOrExpiredToken() error {
	return NewDomainError("INVALID_OR_EXPIRED_TOKEN", "invalid or expired reset token", http.StatusBadRequest, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewStorageWriteError(err error) error {
	return &DomainError{
		Code:       "STORAGE_WRITE_ERROR",
		Message:    "failed to persist changes",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

// NewPermissionDenied carries a deliberately generic message: callers must
// never learn which specific check failed.
func NewPermissionDenied() error {
	return NewDomainError("FORBIDDEN", "not permitted", http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
