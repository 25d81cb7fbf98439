// Package handlers implements the JSON HTTP API.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/diewo77/autoparts/gate"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/validation"
)

// Authorizer is the slice of the auth gate handlers need.
type Authorizer interface {
	Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error
	IsAdmin(ctx context.Context) bool
}

// RoleCache is invalidated when a user's roles change.
type RoleCache interface {
	Invalidate(userID uint)
}

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request) (uint, error) {
	v := validation.Violations{}
	id := validation.Uint("id", r.PathValue("id"), v)
	if err := apperr.Validation(v); err != nil {
		return 0, err
	}
	return id, nil
}

// pagination reads page and limit, defaulting to page 1 of 20 and capping limit at 100.
func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// Page is the envelope of paginated listings.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}
