package policy

import (
	"context"

	"github.com/diewo77/autoparts/gate"
)

// Ownable is implemented by records that belong to one user.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy lets users act only on records they own. Records owned by
// nobody (id 0) are never matched.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy { return &OwnershipPolicy{} }

func (p *OwnershipPolicy) Can(_ context.Context, subject gate.Subject, _ gate.Action, resource any) bool {
	o, ok := resource.(Ownable)
	if !ok {
		return false
	}
	owner := o.GetUserID()
	return owner != 0 && owner == subject.UserID
}
