package models

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrInternalServer     = errors.New("internal server error")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Account lifecycle errors
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidToken       = errors.New("token is not valid")
	ErrWrongCredential    = errors.New("wrong credential")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrPendingValidation  = errors.New("account is pending validation")
	ErrDeactivated        = errors.New("account is deactivated")
	ErrNotificationFailed = errors.New("notification dispatch failed")
)

// FieldError is a single rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries field-level detail and matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
