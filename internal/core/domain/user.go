package domain

import (
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user with this email already exists")
var ErrInvalidCredentials = errors.New("invalid email or password")

// User models an authenticated actor: a renter (role "user") or a car
// owner (role "owner"). Accounts are never hard-deleted; IsActive soft-
// deactivates them.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Image        string    `json:"image,omitempty"`
	IsActive     bool      `json:"isActive"`
	LastLogin    time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
