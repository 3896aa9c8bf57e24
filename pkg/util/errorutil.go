package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/session-service/internal/domain"
)

// Internal codes returned in error bodies.
const (
	CodeEmailTaken         = "ENA-00400"
	CodeInvalidCredentials = "IC-00400"
	CodeInvalidToken       = "IT-00401"
	CodeExpiredToken       = "ET-00403"
	CodeIdentityNotFound   = "UNF-00404"
	CodeForbidden          = "FB-00401"
	CodeValidation         = "VAL-00400"
	CodeInternal           = "IE-00500"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
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
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(message string) error {
	return &DomainError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest, Err: domain.ErrValidation}
}

// NewInternalError hides err behind a generic message; the cause stays
// reachable through Unwrap for logging only.
func NewInternalError(err error) error {
	return internalError(err)
}

func internalError(err error) *DomainError {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "an unspecified internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

var known = []struct {
	target  error
	code    string
	message string
	status  int
}{
	{domain.ErrEmailTaken, CodeEmailTaken, "The Email is not available", http.StatusBadRequest},
	{domain.ErrInvalidCredentials, CodeInvalidCredentials, "Invalid Credentials", http.StatusBadRequest},
	{domain.ErrInvalidToken, CodeInvalidToken, "Invalid token.", http.StatusUnauthorized},
	{domain.ErrExpiredToken, CodeExpiredToken, "Expired token.", http.StatusForbidden},
	{domain.ErrIdentityNotFound, CodeIdentityNotFound, "User not found", http.StatusForbidden},
	{domain.ErrForbidden, CodeForbidden, "Forbidden", http.StatusForbidden},
	{domain.ErrValidation, CodeValidation, "Validation failed", http.StatusBadRequest},
}

// ToDomainError converts any error into a DomainError. Unknown errors become
// internal errors.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, k := range known {
		if errors.Is(err, k.target) {
			return &DomainError{Code: k.code, Message: k.message, HTTPStatus: k.status, Err: err}
		}
	}
	return internalError(err)
}
