package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrAlreadyLiked is returned when the actor already has a like on the post
	ErrAlreadyLiked = &ConflictError{Reason: "post already liked"}

	// ErrNotLiked is returned when unliking a post the actor never liked
	ErrNotLiked = &ConflictError{Reason: "post has not yet been liked"}

	// ErrInvalidCursor is returned when a pagination cursor cannot be decoded
	ErrInvalidCursor = errors.New("invalid cursor")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string // e.g., "post", "comment", "user"
	ID       string // Resource identifier
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// ConflictError is a business-rule rejection such as a duplicate like.
// It is not a server fault and is never retried.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// IsConflict checks if error is a conflict error
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

// AuthorizationError is returned when the actor does not own the resource it
// tries to mutate. It is always distinct from NotFoundError.
type AuthorizationError struct {
	Actor    string
	Action   string // e.g., "delete"
	Resource string // e.g., "post", "comment"
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %s is not authorized to %s this %s", e.Actor, e.Action, e.Resource)
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(actor, action, resource string) error {
	return &AuthorizationError{
		Actor:    actor,
		Action:   action,
		Resource: resource,
	}
}

// IsUnauthorized checks if error is an authorization error
func IsUnauthorized(err error) bool {
	var authErr *AuthorizationError
	return errors.As(err, &authErr)
}

// StorageError wraps a document store failure, including adapter timeouts
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError checks if error is a storage error
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// isDomainError reports whether err already carries one of the post error kinds
func isDomainError(err error) bool {
	return IsValidationError(err) || IsNotFound(err) || IsConflict(err) ||
		IsUnauthorized(err) || IsStorageError(err)
}
