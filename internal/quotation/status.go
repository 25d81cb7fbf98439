// Package quotation turns carts into quotations and moves them through
// their review workflow.
package quotation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/autoparts/internal/models"
)

// Status is the review state of a quotation.
//
//	pending -> approved -> converted
//	pending -> rejected
type Status = models.QuotationStatus

const (
	StatusPending   = models.QuotationPending
	StatusApproved  = models.QuotationApproved
	StatusRejected  = models.QuotationRejected
	StatusConverted = models.QuotationConverted
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown status")
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move quotation from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ConflictCode lets the HTTP layer answer 409.
func (e *TransitionError) ConflictCode() string { return "invalid_transition" }

// ParseStatus accepts the lower-case status names.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func CanTransition(from, to Status) bool {
	return from.CanTransitionTo(to)
}

// Transition validates from -> to. Self-transitions are rejected.
func Transition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
