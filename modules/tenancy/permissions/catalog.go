package permissions

import (
	"context"
	_ "embed"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/pkg/authz"
)

//go:embed model.conf
var Model string

//go:embed policy.csv
var Policy string

// AuthzConfig returns the casbin configuration for the default role bundles.
// Non-empty paths override the embedded model and policy.
func AuthzConfig(modelPath, policyPath string, logger *logrus.Logger) authz.Config {
	return authz.Config{
		ModelText:  Model,
		PolicyText: Policy,
		ModelPath:  modelPath,
		PolicyPath: policyPath,
		Logger:     logger,
		Validate:   ValidatePolicy,
	}
}

// ValidatePolicy rejects unknown role types, unknown permissions and any grant
// of ManageTenants outside super_admin, including grants reached through
// inheritance.
func ValidatePolicy(rules []authz.Rule) error {
	parents := make(map[string][]string)
	granted := make(map[string][]string)
	for _, r := range rules {
		if !role.Type(r.Subject).IsValid() {
			return fmt.Errorf("unknown role type %q", r.Subject)
		}
		switch r.Section {
		case authz.SectionGrouping:
			if !role.Type(r.Target).IsValid() {
				return fmt.Errorf("role %q inherits unknown role type %q", r.Subject, r.Target)
			}
			parents[r.Subject] = append(parents[r.Subject], r.Target)
		case authz.SectionPolicy:
			if !IsKnown(r.Target) {
				return fmt.Errorf("role %q references unknown permission %q", r.Subject, r.Target)
			}
			granted[r.Subject] = append(granted[r.Subject], r.Target)
		}
	}

	for _, t := range role.Types {
		if t == role.TypeSuperAdmin {
			continue
		}
		if reaches(string(t), parents, granted, map[string]bool{}) {
			return fmt.Errorf("%s may only be granted to %s, found on %s", ManageTenants, role.TypeSuperAdmin, t)
		}
	}
	return nil
}

func reaches(subject string, parents, granted map[string][]string, seen map[string]bool) bool {
	if seen[subject] {
		return false
	}
	seen[subject] = true
	if slices.Contains(granted[subject], ManageTenants) {
		return true
	}
	for _, p := range parents[subject] {
		if reaches(p, parents, granted, seen) {
			return true
		}
	}
	return false
}

var byKey = func() map[string]Permission {
	m := make(map[string]Permission, len(All))
	for _, p := range All {
		m[p.Key] = p
	}
	return m
}()

// IsKnown reports whether key is part of the permission universe.
func IsKnown(key string) bool {
	_, ok := byKey[key]
	return ok
}

// Describe returns the catalog entry for key.
func Describe(key string) (Permission, bool) {
	p, ok := byKey[key]
	return p, ok
}

// Unknown returns the keys of perms that are not in the catalog.
func Unknown(perms []string) []string {
	var out []string
	for _, p := range perms {
		if !IsKnown(p) {
			out = append(out, p)
		}
	}
	return out
}

// Group is one category of the catalog with its permissions in display order.
type Group struct {
	Category    Category     `json:"category"`
	Permissions []Permission `json:"permissions"`
}

// Groups returns the catalog grouped by category, preserving display order.
func Groups() []Group {
	var out []Group
	index := make(map[Category]int)
	for _, p := range All {
		i, ok := index[p.Category]
		if !ok {
			i = len(out)
			index[p.Category] = i
			out = append(out, Group{Category: p.Category})
		}
		out[i].Permissions = append(out[i].Permissions, p)
	}
	return out
}

// Catalog resolves default permission bundles per role type.
type Catalog struct {
	authz *authz.Service
}

func NewCatalog(svc *authz.Service) *Catalog {
	return &Catalog{authz: svc}
}

// Defaults returns the default permission set for t in display order.
func (c *Catalog) Defaults(t role.Type) ([]string, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown role type %q", t)
	}
	return c.authz.PermissionsFor(string(t), Keys())
}

// Reload re-reads the policy. The active bundles stay in place when the new
// policy fails validation.
func (c *Catalog) Reload(ctx context.Context) error {
	return c.authz.ReloadPolicy(ctx)
}
