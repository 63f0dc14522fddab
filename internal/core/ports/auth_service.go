package ports

import (
	"context"

	"github.com/Sharky83/CarRental/internal/core/domain"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string // defaults to "user" when empty
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Profile returns the account for the authenticated user id.
	Profile(ctx context.Context, userID string) (*domain.User, error)
	// ChangeRole upgrades a renter account to the owner role.
	ChangeRole(ctx context.Context, userID string) (*domain.User, error)
}
