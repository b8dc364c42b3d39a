// Package apperr holds the error taxonomy shared by the catalog, cart,
// search and admin components.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when an operation needs an authorized session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotConfirmed is returned when a destructive action was declined
	ErrNotConfirmed = errors.New("action not confirmed")
)

// FetchError reports a failed remote call: the catalogue store or the
// external card search provider. Network failures and non-success
// statuses both end up here.
type FetchError struct {
	Op  string // e.g. "catalog.ListVisible"
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err, or returns nil when err is nil
func NewFetchError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Op: op, Err: err}
}

// IsFetchError reports whether err or any error it wraps is a FetchError
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ValidationError carries field-level messages for rejected form input
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AsValidationError unwraps err into a ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
