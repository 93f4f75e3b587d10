package apperr

import "fmt"

// ValidationError signals a request with a bad shape or out-of-range value.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError signals an id/owner mismatch or a soft-deleted record.
type NotFoundError struct {
	Resource string
	Id       string
}

func (e *NotFoundError) Error() string {
	if e.Id == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.Id)
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, Id: id}
}

// DatabaseError wraps a persistence failure with the operation that hit it.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

func NewDatabase(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

// ProviderError wraps an upstream embedding/completion provider failure.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProvider(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}

// ParseError signals a malformed stored value (e.g. a vector literal).
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParse(input string, err error) *ParseError {
	return &ParseError{Input: input, Err: err}
}
