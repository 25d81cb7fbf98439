package policy

import (
	"context"

	"github.com/diewo77/autoparts/gate"
	"github.com/diewo77/autoparts/internal/models"
	"gorm.io/gorm"
)

// DBRoleResolver reads roles from user_roles. Soft-deleted users have none.
type DBRoleResolver struct {
	db *gorm.DB
}

func NewDBRoleResolver(db *gorm.DB) *DBRoleResolver {
	return &DBRoleResolver{db: db}
}

func (r *DBRoleResolver) Resolve(ctx context.Context, userID uint) ([]gate.Role, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Where("user_roles.user_id = ?", userID).
		Order("user_roles.role").
		Pluck("user_roles.role", &names).Error
	if err != nil {
		return nil, err
	}
	roles := make([]gate.Role, 0, len(names))
	for _, n := range names {
		if role := gate.Role(n); role.Valid() {
			roles = append(roles, role)
		}
	}
	return roles, nil
}
