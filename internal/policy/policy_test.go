package policy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diewo77/autoparts/auth"
	"github.com/diewo77/autoparts/gate"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/dbtest"
	"github.com/diewo77/autoparts/internal/models"
	"gorm.io/gorm"
)

func createUser(t *testing.T, db *gorm.DB, email string, roles ...string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x"}
	for _, r := range roles {
		u.Roles = append(u.Roles, models.UserRole{Role: r})
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	return u
}

func TestDBRoleResolver(t *testing.T) {
	db := dbtest.New(t)
	admin := createUser(t, db, "admin@x.io", models.RoleAdmin, models.RoleCustomer)
	customer := createUser(t, db, "c@x.io", models.RoleCustomer)

	r := NewDBRoleResolver(db)
	roles, err := r.Resolve(context.Background(), admin.ID)
	if err != nil || len(roles) != 2 {
		t.Fatalf("admin roles = %v, %v", roles, err)
	}
	roles, _ = r.Resolve(context.Background(), customer.ID)
	if len(roles) != 1 || roles[0] != gate.RoleCustomer {
		t.Fatalf("customer roles = %v", roles)
	}

	db.Delete(&customer)
	roles, _ = r.Resolve(context.Background(), customer.ID)
	if len(roles) != 0 {
		t.Fatalf("deleted user still has roles %v", roles)
	}
}

func TestAuthGate_QuotationOwnership(t *testing.T) {
	db := dbtest.New(t)
	admin := createUser(t, db, "admin@x.io", models.RoleAdmin)
	alice := createUser(t, db, "alice@x.io", models.RoleCustomer)
	bob := createUser(t, db, "bob@x.io", models.RoleCustomer)

	ag := NewAuthGate(db, time.Minute)
	ag.RegisterPolicy("quotation", NewOwnershipPolicy())

	q := &models.Quotation{UserID: &alice.ID}
	anon := &models.Quotation{}

	tests := []struct {
		name string
		uid  uint
		res  *models.Quotation
		want error
	}{
		{"owner", alice.ID, q, nil},
		{"other customer", bob.ID, q, &apperr.AuthorizationError{}},
		{"admin", admin.ID, q, nil},
		{"anonymous quotation", alice.ID, anon, &apperr.AuthorizationError{}},
		{"no user", 0, q, apperr.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.uid != 0 {
				ctx = auth.WithUserID(ctx, tt.uid)
			}
			err := ag.Authorize(ctx, gate.ActionView, "quotation", tt.res)
			switch want := tt.want.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected %v", err)
				}
			case *apperr.AuthorizationError:
				var ae *apperr.AuthorizationError
				if !errors.As(err, &ae) {
					t.Fatalf("expected AuthorizationError, got %v", err)
				}
			default:
				if !errors.Is(err, want) {
					t.Fatalf("expected %v, got %v", want, err)
				}
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	db := dbtest.New(t)
	admin := createUser(t, db, "admin@x.io", models.RoleAdmin)
	customer := createUser(t, db, "c@x.io", models.RoleCustomer)
	ag := NewAuthGate(db, time.Minute)

	h := ag.RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		uid    uint
		status int
		code   string
	}{
		{"anonymous", 0, http.StatusUnauthorized, "unauthorized"},
		{"customer", customer.ID, http.StatusForbidden, "forbidden"},
		{"admin", admin.ID, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
			if tt.uid != 0 {
				r = r.WithContext(auth.WithUserID(r.Context(), tt.uid))
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.code != "" {
				var body map[string]any
				_ = json.Unmarshal(w.Body.Bytes(), &body)
				if body["error"] != tt.code {
					t.Fatalf("error = %v, want %s", body["error"], tt.code)
				}
			}
		})
	}
}

func TestInvalidateUserPicksUpNewRole(t *testing.T) {
	db := dbtest.New(t)
	u := createUser(t, db, "c@x.io", models.RoleCustomer)
	ag := NewAuthGate(db, time.Hour)
	ctx := auth.WithUserID(context.Background(), u.ID)

	if ag.IsAdmin(ctx) {
		t.Fatal("should not be admin yet")
	}
	db.Create(&models.UserRole{UserID: u.ID, Role: models.RoleAdmin})
	if ag.IsAdmin(ctx) {
		t.Fatal("cached roles should still apply")
	}
	ag.InvalidateUser(u.ID)
	if !ag.IsAdmin(ctx) {
		t.Fatal("promotion not visible after invalidation")
	}
}
