package ports

import (
	"context"

	"github.com/toolrent/rental-system/internal/core/domain"
)

// RegisterInput carries the signup form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by a successful Authenticate.
type AuthResult struct {
	Token   string
	Profile domain.Profile
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (int64, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	VerifyToken(ctx context.Context, token string) (int64, error)
	Profile(ctx context.Context, userID int64) (*domain.Profile, error)
}

// PasswordHasher derives and checks salted one-way password hashes.
// Compare returns domain.ErrInvalidCredentials on mismatch.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
}
