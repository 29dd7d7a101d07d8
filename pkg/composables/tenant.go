package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/pkg/constants"
)

var (
	ErrNoTenant = errors.New("no tenant found in context")
	ErrNoCaller = errors.New("no caller found in context")
)

// WithTenant records the tenant resolved from the request host.
func WithTenant(ctx context.Context, id uuid.UUID, slug string) context.Context {
	ctx = context.WithValue(ctx, constants.TenantIDKey, id)
	return context.WithValue(ctx, constants.TenantSlugKey, slug)
}

// UseTenantID returns the host tenant. ErrNoTenant means the super-tenant context.
func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(constants.TenantIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoTenant
	}
	return id, nil
}

func UseTenantSlug(ctx context.Context) (string, bool) {
	slug, ok := ctx.Value(constants.TenantSlugKey).(string)
	return slug, ok && slug != ""
}

func WithCaller(ctx context.Context, c *caller.Caller) context.Context {
	return context.WithValue(ctx, constants.CallerKey, c)
}

// UseCaller returns the authenticated caller, or ErrNoCaller.
func UseCaller(ctx context.Context) (*caller.Caller, error) {
	c, ok := ctx.Value(constants.CallerKey).(*caller.Caller)
	if !ok || c == nil {
		return nil, ErrNoCaller
	}
	return c, nil
}
