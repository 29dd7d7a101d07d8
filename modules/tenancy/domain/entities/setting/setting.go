package setting

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Setting is one key/value row. A nil TenantID is the global scope.
type Setting struct {
	Key       string
	Value     string
	TenantID  *uuid.UUID
	UpdatedAt time.Time
}

// Repository reads and writes rows of exactly one scope; it never falls back
// from a tenant scope to the global one.
type Repository interface {
	ListByScope(ctx context.Context, tenantID *uuid.UUID) ([]Setting, error)
	Upsert(ctx context.Context, s Setting) error
}
