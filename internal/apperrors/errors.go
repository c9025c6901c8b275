package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed or missing input with per-field detail.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError means the id has no matching record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ForbiddenError means the authenticated caller is not allowed to act on the record.
type ForbiddenError struct {
	Action string
}

func (e *ForbiddenError) Error() string {
	if e.Action == "" {
		return "not authorized"
	}
	return "not authorized to " + e.Action
}

// ConflictError means a uniqueness constraint would be violated.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// CodecError means the identity artifact could not be rendered.
type CodecError struct {
	Err error
}

func (e *CodecError) Error() string { return "qr code generation failed: " + e.Err.Error() }
func (e *CodecError) Unwrap() error { return e.Err }

// DispatchError means the notification transport failed. It is always
// non-fatal to the flow that triggered it.
type DispatchError struct {
	Recipient string
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to %s failed: %v", e.Recipient, e.Err)
}
func (e *DispatchError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsCodec(err error) bool {
	var target *CodecError
	return errors.As(err, &target)
}
