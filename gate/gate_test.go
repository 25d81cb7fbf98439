package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/autoparts/gate"
)

type owned struct{ userID uint }

func ownerPolicy() gate.Policy {
	return gate.PolicyFunc(func(_ context.Context, s gate.Subject, _ gate.Action, resource any) bool {
		o, ok := resource.(owned)
		return ok && o.userID == s.UserID
	})
}

func newGate() (*gate.Gate, *gate.StaticResolver) {
	res := gate.NewStaticResolver()
	res.Set(1, gate.RoleAdmin)
	res.Set(2, gate.RoleCustomer)
	g := gate.NewGate(res, gate.DefaultGrants())
	g.Register("quotation", ownerPolicy())
	return g, res
}

func TestGate_Authorize_NoUser(t *testing.T) {
	g, _ := newGate()
	err := g.Authorize(context.Background(), 0, gate.ActionView, "product", nil)
	if !errors.Is(err, gate.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGate_Authorize_Admin(t *testing.T) {
	g, _ := newGate()
	ctx := context.Background()
	for _, a := range []gate.Action{gate.ActionCreate, gate.ActionDelete, gate.ActionTransition} {
		if err := g.Authorize(ctx, 1, a, "product", nil); err != nil {
			t.Errorf("admin %s: unexpected %v", a, err)
		}
	}
	// Admins bypass ownership policies.
	if err := g.Authorize(ctx, 1, gate.ActionView, "quotation", owned{userID: 2}); err != nil {
		t.Errorf("admin should view any quotation, got %v", err)
	}
}

func TestGate_Authorize_Customer(t *testing.T) {
	g, _ := newGate()
	ctx := context.Background()

	if err := g.Authorize(ctx, 2, gate.ActionCreate, "product", nil); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("customer must not create products, got %v", err)
	}
	if !g.Can(ctx, 2, gate.ActionListOwn, "quotation", nil) {
		t.Error("customer should list own quotations")
	}
	if !g.Can(ctx, 2, gate.ActionView, "quotation", owned{userID: 2}) {
		t.Error("customer should view own quotation")
	}
	if g.Can(ctx, 2, gate.ActionView, "quotation", owned{userID: 3}) {
		t.Error("customer must not view someone else's quotation")
	}
	if g.Can(ctx, 2, gate.ActionTransition, "quotation", nil) {
		t.Error("customer must not change quotation status")
	}
}

func TestGate_Authorize_UnknownUserHasNoRoles(t *testing.T) {
	g, _ := newGate()
	if err := g.Authorize(context.Background(), 99, gate.ActionList, "product", nil); !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestGate_IsAdmin(t *testing.T) {
	g, res := newGate()
	ctx := context.Background()
	if ok, err := g.IsAdmin(ctx, 1); err != nil || !ok {
		t.Fatalf("user 1 should be admin: %v %v", ok, err)
	}
	if ok, _ := g.IsAdmin(ctx, 2); ok {
		t.Fatal("user 2 should not be admin")
	}
	res.Set(2, gate.RoleCustomer, gate.RoleAdmin)
	if ok, _ := g.IsAdmin(ctx, 2); !ok {
		t.Fatal("user 2 should be admin after promotion")
	}
}
