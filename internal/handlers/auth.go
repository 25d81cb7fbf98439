package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/autoparts/auth"
	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthHandler struct {
	db       *gorm.DB
	gate     Authorizer
	tokenTTL time.Duration
}

func NewAuthHandler(db *gorm.DB, gate Authorizer, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{db: db, gate: gate, tokenTTL: tokenTTL}
}

type meResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginResponse struct {
	User  meResponse `json:"user"`
	Token string     `json:"token"`
}

// Login checks the credentials, sets the session cookie and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(f.Get("email")))

	var user models.User
	if err := h.db.WithContext(r.Context()).Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.Remote("load user", err))
			return
		}
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(f.Get("password"))); err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	h.startSession(w, &user, http.StatusOK)
}

// Signup creates a customer account and signs it in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ReadFields(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(f.Get("email")))
	password := f.Get("password")

	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("password", password, v)
	validation.MinLength("password", password, minPasswordLength, v)
	if err := apperr.Validation(v); err != nil {
		httpx.Error(w, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	user := models.User{
		Email:    email,
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(f.Get("full_name")),
		Roles:    []models.UserRole{{Role: models.RoleCustomer}},
	}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.Error(w, apperr.ErrAlreadyExists)
			return
		}
		httpx.Error(w, apperr.Remote("create user", err))
		return
	}
	h.startSession(w, &user, http.StatusCreated)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, user *models.User, status int) {
	token, err := auth.IssueToken(user.ID, h.tokenTTL)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, status, loginResponse{
		User:  meResponse{ID: user.ID, Email: user.Email, FullName: user.FullName, IsAdmin: user.IsAdmin()},
		Token: token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me describes the signed-in user; admin status comes from the gate.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.ErrUnauthenticated)
		return
	}
	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(w, apperr.ErrUnauthenticated)
			return
		}
		httpx.Error(w, apperr.Remote("load user", err))
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{ID: user.ID, Email: user.Email, FullName: user.FullName, IsAdmin: h.gate.IsAdmin(r.Context())})
}

// UserExists backs auth.SetUserVerifier.
func UserExists(db *gorm.DB) auth.UserVerifier {
	return func(ctx context.Context, uid uint) bool {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	}
}
