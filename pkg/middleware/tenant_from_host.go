package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/subdomain"
)

const TenantSlugHeader = "X-Tenant-Slug"

type TenantResolver interface {
	ResolveBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
}

type TenantFromHostOptions struct {
	// AllowSlugHeader honours X-Tenant-Slug when the host names no tenant.
	// Meant for local development only.
	AllowSlugHeader bool
}

// RequireTenantFromHost binds the request to the tenant named by the host's
// subdomain. Hosts without a tenant label leave the request in the
// super-tenant context; unknown slugs answer 404.
func RequireTenantFromHost(tenants TenantResolver, opts TenantFromHostOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug, ok := subdomain.Resolve(r.Host)
			if !ok && opts.AllowSlugHeader {
				if h := strings.ToLower(strings.TrimSpace(r.Header.Get(TenantSlugHeader))); h != "" {
					slug, ok = h, true
				}
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			t, err := tenants.ResolveBySlug(r.Context(), slug)
			if err != nil {
				requestLogger(r).WithField("host", r.Host).WithField("slug", slug).WithError(err).Warn("tenant not found for host")
				httpapi.WriteServiceError(w, r, err)
				return
			}

			ctx := composables.WithTenant(r.Context(), t.ID(), t.Slug())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
