package ports

import (
	"context"

	"github.com/toolrent/rental-system/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce email
// uniqueness themselves and report a violation as domain.ErrDuplicateEmail.
type UserRepository interface {
	// Create inserts the user and returns the store-assigned identifier.
	Create(ctx context.Context, user *domain.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
