package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/constants"
)

// Provide stores v under k in every request context.
func Provide(k constants.ContextKey, v any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), k, v)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestParams attaches client ip, user agent and the raw request/writer.
func RequestParams(realIPHeader string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _ := realIP(r, realIPHeader)
			params := &composables.Params{
				IP:            ip,
				UserAgent:     r.UserAgent(),
				Authenticated: strings.TrimSpace(r.Header.Get("Authorization")) != "",
				Request:       r,
				Writer:        w,
			}
			next.ServeHTTP(w, r.WithContext(composables.WithParams(r.Context(), params)))
		})
	}
}
