package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "role must be player or stadium_owner")
)

// Role mirrors the roles carried in access tokens.
type Role string

const (
	RolePlayer       Role = "player"
	RoleStadiumOwner Role = "stadium_owner"
	RoleAdmin        Role = "admin"
)

// User represents an account: a player, a stadium owner or an admin.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	FullName     *string
	Phone        *string
	Role         Role
	CreatedAt    time.Time
	LastLoginAt  *time.Time
	IsActive     bool
}
