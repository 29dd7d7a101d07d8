// Package subdomain maps a request host to a tenant slug.
package subdomain

import (
	"net"
	"strings"
)

const localhost = "localhost"

// Resolve returns the tenant slug carried by host, or false when the host
// addresses the super-tenant (bare domain, admin, www, localhost, IP literal).
func Resolve(host string) (string, bool) {
	h := Normalize(host)
	if h == "" || h == localhost || net.ParseIP(h) != nil {
		return "", false
	}

	labels := strings.Split(h, ".")
	for _, l := range labels {
		if l == "" {
			return "", false
		}
	}

	switch {
	case len(labels) == 2 && labels[1] == localhost:
		if labels[0] == "admin" {
			return "", false
		}
		return labels[0], true
	case len(labels) >= 3:
		if labels[0] == "admin" || labels[0] == "www" {
			return "", false
		}
		return labels[0], true
	}
	return "", false
}

// Normalize lowercases host and strips any port, including from bracketed IPv6.
func Normalize(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return ""
	}
	if hostOnly, _, err := net.SplitHostPort(h); err == nil {
		return strings.Trim(hostOnly, "[]")
	}
	return strings.Trim(h, "[]")
}
