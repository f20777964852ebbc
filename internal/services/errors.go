package services

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("role must be student or tutor")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("help request not found")
	ErrInvalidStatus      = errors.New("status must be open, matched or closed")
)
