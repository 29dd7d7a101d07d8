package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/pkg/composables"
)

type OpsGuardOptions struct {
	Enabled bool
	// Paths are matched exactly, e.g. the health and metrics endpoints.
	Paths        []string
	CIDRs        string
	Token        string
	RealIPHeader string
}

type opsGuard struct {
	opts  OpsGuardOptions
	cidrs []netip.Prefix
}

// OpsGuard hides operational endpoints behind an ip allowlist or a shared
// token. Guarded paths answer 404 to everyone else.
func OpsGuard(opts OpsGuardOptions) mux.MiddlewareFunc {
	g := &opsGuard{opts: opts, cidrs: parseCIDRs(opts.CIDRs)}
	return g.middleware
}

func (g *opsGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.opts.Enabled || !slices.Contains(g.opts.Paths, r.URL.Path) || g.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func (g *opsGuard) authorized(r *http.Request) bool {
	if len(g.cidrs) > 0 {
		if ip, ok := realIP(r, g.opts.RealIPHeader); ok {
			if addr, err := netip.ParseAddr(ip); err == nil {
				for _, p := range g.cidrs {
					if p.Contains(addr) {
						return true
					}
				}
			}
		}
	}
	if token := strings.TrimSpace(g.opts.Token); token != "" {
		return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(r.Header.Get("X-Ops-Token"))), []byte(token)) == 1
	}
	return false
}

func parseCIDRs(raw string) []netip.Prefix {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' })
	out := make([]netip.Prefix, 0, len(parts))
	for _, part := range parts {
		if p, err := netip.ParsePrefix(part); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func realIP(r *http.Request, header string) (string, bool) {
	if r == nil {
		return "", false
	}
	if header != "" {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			// X-Forwarded-For style: take the first item
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = strings.TrimSpace(v[:i])
			}
			return stripPort(v)
		}
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host, true
	}
	return s, true
}

func requestLogger(r *http.Request) *logrus.Entry {
	return composables.TryUseLogger(r.Context(), logrus.NewEntry(logrus.StandardLogger()))
}
