package quotation

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"pending", "Approved", " rejected ", "converted"} {
		if _, err := ParseStatus(in); err != nil {
			t.Errorf("ParseStatus(%q): %v", in, err)
		}
	}
	if _, err := ParseStatus("shipped"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestTransition(t *testing.T) {
	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusConverted}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusApproved}:   true,
		{StatusPending, StatusRejected}:   true,
		{StatusApproved, StatusConverted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			err := Transition(from, to)
			if allowed[[2]Status{from, to}] {
				if err != nil {
					t.Errorf("%s -> %s: unexpected %v", from, to, err)
				}
				continue
			}
			var te *TransitionError
			if !errors.As(err, &te) || !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: expected TransitionError, got %v", from, to, err)
			}
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true", from, to)
			}
		}
	}
}

func TestTerminalAndNext(t *testing.T) {
	if !StatusRejected.Terminal() || !StatusConverted.Terminal() {
		t.Error("rejected and converted must be terminal")
	}
	if StatusPending.Terminal() || StatusApproved.Terminal() {
		t.Error("pending and approved are not terminal")
	}
	if next := StatusPending.Next(); len(next) != 2 {
		t.Errorf("pending.Next() = %v", next)
	}
	if next := StatusConverted.Next(); len(next) != 0 {
		t.Errorf("converted.Next() = %v", next)
	}
}
