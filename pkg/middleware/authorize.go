package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/serrors"
)

type Authorizer interface {
	Authorize(ctx context.Context, c *caller.Caller, required ...string) error
}

type CapacityGuard interface {
	EnsureCapacity(ctx context.Context, c *caller.Caller, tenantID uuid.UUID, r plan.Resource) error
}

func currentCaller(r *http.Request) *caller.Caller {
	c, err := composables.UseCaller(r.Context())
	if err != nil {
		return nil
	}
	return c
}

// RequirePermissions admits callers holding any of required.
func RequirePermissions(authz Authorizer, required ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authz.Authorize(r.Context(), currentCaller(r), required...); err != nil {
				httpapi.WriteServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// actingTenant is the caller's own tenant, or the host tenant for a caller
// without one.
func actingTenant(r *http.Request, c *caller.Caller) (uuid.UUID, bool) {
	if c != nil {
		if id, ok := c.TenantID(); ok {
			return id, true
		}
	}
	id, err := composables.UseTenantID(r.Context())
	return id, err == nil
}

// RequireCapacity rejects the request when the acting tenant has no room
// left for one more resource of kind r. Requests without an acting tenant
// pass through; the handler decides whether a tenant is required.
func RequireCapacity(guard CapacityGuard, kind plan.Resource) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := currentCaller(r)
			if c == nil {
				httpapi.WriteServiceError(w, r, serrors.Unauthenticated("authentication required"))
				return
			}
			tenantID, ok := actingTenant(r, c)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if err := guard.EnsureCapacity(r.Context(), c, tenantID, kind); err != nil {
				httpapi.WriteServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
