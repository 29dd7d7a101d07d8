package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/serrors"
)

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, serrors.NewValidationError(serrors.ValidationErrors{"id": "uuid"})
	}
	return id, nil
}

func requireCaller(r *http.Request) (*caller.Caller, error) {
	c, err := composables.UseCaller(r.Context())
	if err != nil {
		return nil, serrors.Unauthenticated("authentication required")
	}
	return c, nil
}

// actingTenant is the tenant a request operates on: the caller's own tenant,
// or for a super admin the tenant bound by the host. Nil means the platform
// scope.
func actingTenant(r *http.Request, c *caller.Caller) *uuid.UUID {
	if id, ok := c.TenantID(); ok {
		return &id
	}
	if id, err := composables.UseTenantID(r.Context()); err == nil {
		return &id
	}
	return nil
}

// requireActingTenant is actingTenant for endpoints that have no platform scope.
func requireActingTenant(r *http.Request, c *caller.Caller) (uuid.UUID, error) {
	id := actingTenant(r, c)
	if id == nil {
		return uuid.Nil, serrors.NewValidationError(serrors.ValidationErrors{"tenant": "required"})
	}
	return *id, nil
}

// guarded wraps h with mw, outermost first.
func guarded(h http.HandlerFunc, mw ...mux.MiddlewareFunc) http.Handler {
	var out http.Handler = h
	for i := len(mw) - 1; i >= 0; i-- {
		out = mw[i](out)
	}
	return out
}
