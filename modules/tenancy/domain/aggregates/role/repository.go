package role

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("role not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Role, error)
	GetByType(ctx context.Context, t Type) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	Create(ctx context.Context, r *Role) (*Role, error)
	Update(ctx context.Context, r *Role) (*Role, error)
}
