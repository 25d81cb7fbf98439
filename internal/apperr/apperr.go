// Package apperr defines the error kinds shared by services and handlers.
//
//   - ValidationError: input rejected before any remote call is made.
//   - RemoteOperationError: a database or broker call failed.
//   - AuthorizationError: the caller is signed in but lacks the required role.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/autoparts/validation"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnauthenticated = errors.New("unauthenticated")
)

type ValidationError struct {
	Fields validation.Violations
}

// Validation wraps violations, or returns nil when there are none.
func Validation(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Fields: v}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

type RemoteOperationError struct {
	Op  string
	Err error
}

// Remote wraps err as a RemoteOperationError. Errors that already carry a
// meaning for callers (not found, duplicates, validation, remote) pass through.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		re *RemoteOperationError
	)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) || errors.As(err, &ve) || errors.As(err, &re) {
		return err
	}
	return &RemoteOperationError{Op: op, Err: err}
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteOperationError) Unwrap() error { return e.Err }

type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return "forbidden: " + e.Reason
}
