package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so the transport layer can map it
// to a stable status without inspecting individual codes.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindAuthorization ErrorKind = "authorization"
	KindDependency    ErrorKind = "dependency"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches domain errors by code so errors.Is works with the package sentinels
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithField returns a copy of the error bound to the offending input field
func (e *DomainError) WithField(field string) *DomainError {
	cp := *e
	cp.Field = field
	return &cp
}

// NewDomainError creates a new domain error. Codes that carry a well-known
// kind are classified automatically; everything else is a validation error.
func NewDomainError(code, message string) *DomainError {
	kind, ok := codeKinds[code]
	if !ok {
		kind = KindValidation
	}
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an error for input that fails field constraints
func NewValidationError(field, code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message, Field: field}
}

// NewNotFoundError creates an error for an id that does not resolve
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// NewConflictError creates an error for uniqueness or business-rule violations
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// NewAuthorizationError creates an error for missing permission or ownership
func NewAuthorizationError(code, message string) *DomainError {
	return &DomainError{Kind: KindAuthorization, Code: code, Message: message}
}

// NewDependencyError creates an error for a failing collaborator (email, storage, images)
func NewDependencyError(code, message string) *DomainError {
	return &DomainError{Kind: KindDependency, Code: code, Message: message}
}

// KindOf returns the kind of err, or "" when err is not a DomainError
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

var codeKinds = map[string]ErrorKind{
	"NOT_FOUND":               KindNotFound,
	"ALREADY_EXISTS":          KindConflict,
	"DUPLICATE_NUMBER":        KindConflict,
	"CONCURRENT_MODIFICATION": KindConflict,
	"INVALID_STATE":           KindConflict,
	"INVALID_TRANSITION":      KindConflict,
	"INSUFFICIENT_STOCK":      KindConflict,
	"UNAUTHORIZED":            KindAuthorization,
	"FORBIDDEN":               KindAuthorization,
	"DEPENDENCY_FAILED":       KindDependency,
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrDuplicateNumber     = NewDomainError("DUPLICATE_NUMBER", "Sequential number already issued")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Authentication required")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)
