package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("user not found")

// Repository never returns soft-deleted users.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*User, error)
	FirstByTenantAndRole(ctx context.Context, tenantID, roleID uuid.UUID) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
