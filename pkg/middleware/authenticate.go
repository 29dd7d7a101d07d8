package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/serrors"
	"github.com/iota-uz/consentia/pkg/token"
)

type TokenParser interface {
	Parse(raw string) (token.Claims, error)
}

// CallerLoader rebuilds the caller of a verified token from storage.
type CallerLoader interface {
	LoadCaller(ctx context.Context, claims token.Claims) (*caller.Caller, error)
}

// Authenticate attaches the bearer token's caller to the request. Requests
// without an Authorization header continue unauthenticated. A tenant-scoped
// caller presenting a token on another tenant's host is rejected.
func Authenticate(tokens TokenParser, loader CallerLoader) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := token.FromHeader(header)
			if err != nil {
				httpapi.WriteServiceError(w, r, serrors.Unauthenticated(err.Error()))
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				requestLogger(r).WithError(err).Info("rejected bearer token")
				httpapi.WriteServiceError(w, r, serrors.Unauthenticated("invalid or expired token"))
				return
			}
			c, err := loader.LoadCaller(r.Context(), claims)
			if err != nil {
				httpapi.WriteServiceError(w, r, err)
				return
			}

			if hostTenant, err := composables.UseTenantID(r.Context()); err == nil {
				if own, scoped := c.TenantID(); scoped && own != hostTenant {
					requestLogger(r).WithField("user", c.UserID).
						WithField("caller_tenant", own).
						WithField("host_tenant", hostTenant).
						Warn("token used on a foreign tenant host")
					httpapi.WriteServiceError(w, r, serrors.Forbidden("token does not belong to this tenant"))
					return
				}
			}

			ctx := composables.WithCaller(r.Context(), c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
