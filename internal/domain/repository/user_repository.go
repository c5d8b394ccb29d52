package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateKey is returned when a write would break email uniqueness.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidID is returned when an id is not in the store's identifier format.
	ErrInvalidID = errors.New("invalid id")
)

// UserRepository is the credential store. Emails passed in are already normalized.
// Implementations must enforce email uniqueness themselves and report it as ErrDuplicateKey.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// Create assigns ID and timestamps and returns the stored user.
	Create(ctx context.Context, u *entity.User) (*entity.User, error)
	// Update applies the patch atomically and returns the user after the write.
	Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)
}
