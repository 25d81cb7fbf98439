package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/autoparts/auth"
	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var assignableRoles = []string{models.RoleAdmin, models.RoleCustomer}

// AdminUserHandler lists users and grants or revokes their roles.
type AdminUserHandler struct {
	db    *gorm.DB
	roles RoleCache
}

func NewAdminUserHandler(db *gorm.DB, roles RoleCache) *AdminUserHandler {
	return &AdminUserHandler{db: db, roles: roles}
}

func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	db := h.db.WithContext(r.Context()).Model(&models.User{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		httpx.Error(w, apperr.Remote("count users", err))
		return
	}
	users := []models.User{}
	if err := db.Preload("Roles").Order("id").Limit(limit).Offset((page - 1) * limit).Find(&users).Error; err != nil {
		httpx.Error(w, apperr.Remote("list users", err))
		return
	}
	httpx.JSON(w, http.StatusOK, Page[models.User]{Items: users, Page: page, Limit: limit, Total: total})
}

// GrantRole serves PUT /api/admin/users/{id}/roles/{role}. Granting a role
// the user already holds is a no-op.
func (h *AdminUserHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	uid, role, err := h.target(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	err = h.db.WithContext(r.Context()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: uid, Role: role}).Error
	if err != nil {
		httpx.Error(w, apperr.Remote("grant role", err))
		return
	}
	h.roles.Invalidate(uid)
	h.respond(w, r, uid)
}

// RevokeRole serves DELETE /api/admin/users/{id}/roles/{role}. Admins
// cannot drop their own admin role.
func (h *AdminUserHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	uid, role, err := h.target(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if current, _ := auth.UserIDFromContext(r.Context()); current == uid && role == models.RoleAdmin {
		httpx.Error(w, &apperr.AuthorizationError{Reason: "cannot revoke own admin role"})
		return
	}
	if err := h.db.WithContext(r.Context()).Where("user_id = ? AND role = ?", uid, role).Delete(&models.UserRole{}).Error; err != nil {
		httpx.Error(w, apperr.Remote("revoke role", err))
		return
	}
	h.roles.Invalidate(uid)
	h.respond(w, r, uid)
}

// target parses the path and checks the user exists.
func (h *AdminUserHandler) target(r *http.Request) (uint, string, error) {
	uid, err := pathID(r)
	if err != nil {
		return 0, "", err
	}
	role := r.PathValue("role")
	v := validation.Violations{}
	validation.OneOf("role", role, assignableRoles, v)
	if err := apperr.Validation(v); err != nil {
		return 0, "", err
	}
	var count int64
	if err := h.db.WithContext(r.Context()).Model(&models.User{}).Where("id = ?", uid).Count(&count).Error; err != nil {
		return 0, "", apperr.Remote("load user", err)
	}
	if count == 0 {
		return 0, "", apperr.ErrNotFound
	}
	return uid, role, nil
}

func (h *AdminUserHandler) respond(w http.ResponseWriter, r *http.Request, uid uint) {
	var user models.User
	if err := h.db.WithContext(r.Context()).Preload("Roles").First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrNotFound)
			return
		}
		httpx.Error(w, apperr.Remote("load user", err))
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
