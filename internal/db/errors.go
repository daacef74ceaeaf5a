package db

import (
	"errors"
	"fmt"

	"github.com/quilldb/quill/internal/query"
)

// InputError reports a request the core rejects before touching state:
// a missing or non-JSON top-level value, or an unparseable query.
type InputError struct {
	Message string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return "input: " + e.Message
}

// NewInputError creates an InputError with a formatted message.
func NewInputError(format string, args ...any) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// IsInput reports whether err is an input error, including a query
// parse error surfaced through Find. Uses errors.As to handle wrapping.
func IsInput(err error) bool {
	var ie *InputError
	if errors.As(err, &ie) {
		return true
	}
	var qe *query.InvalidQueryError
	return errors.As(err, &qe)
}

// StorageError wraps a failure of the KV engine with the operation and
// key it occurred under, for observability. NotFound never becomes a
// StorageError; it maps to absence.
type StorageError struct {
	Op  string // core operation, e.g. "create", "poll scan"
	Key string // affected key, empty for whole-store operations
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying engine error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// CorruptionError reports an envelope that failed to decode. It is a
// storage-class error; callers may choose to quarantine the key.
type CorruptionError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt envelope for %q: %v", e.Key, e.Err)
}

// Unwrap returns the decode error.
func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// IsCorruption reports whether err is a corruption error.
// Uses errors.As to handle wrapped errors.
func IsCorruption(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}
