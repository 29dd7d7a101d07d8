package authz

import (
	"fmt"
	"strings"

	"github.com/iota-uz/consentia/pkg/serrors"
)

// Denied builds the user-facing error for a denied permission check. Only the
// required set is disclosed.
func Denied(required []string) *serrors.BaseError {
	return serrors.Forbidden(MissingPermissionReason(required)).
		WithMeta(map[string]string{"required": strings.Join(required, ",")})
}

// MissingPermissionReason is the denial text shared by the guard and HTTP layer.
func MissingPermissionReason(required []string) string {
	return fmt.Sprintf("missing permission: requires one of [%s]", strings.Join(required, ", "))
}

// configError standardizes configuration validation errors.
func configError(msg string, args ...any) error {
	return fmt.Errorf("authz: "+msg, args...)
}
