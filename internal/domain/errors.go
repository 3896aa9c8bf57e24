package domain

import "errors"

var (
	ErrEmailTaken         = errors.New("the email is not available")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	// ErrExpiredToken means the token verified but its session was superseded.
	ErrExpiredToken     = errors.New("expired token")
	ErrIdentityNotFound = errors.New("user not found")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation failed")
)
