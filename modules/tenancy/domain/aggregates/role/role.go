package role

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSuperAdmin   Type = "super_admin"
	TypeAdminGeneral Type = "admin_general"
	TypeAdminBranch  Type = "admin_branch"
	TypeOperator     Type = "operator"
)

// Types lists the built-in role types in seeding order.
var Types = []Type{TypeSuperAdmin, TypeAdminGeneral, TypeAdminBranch, TypeOperator}

func (t Type) IsValid() bool {
	return slices.Contains(Types, t)
}

type Role struct {
	id          uuid.UUID
	name        string
	roleType    Type
	description string
	permissions []string
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*Role)

func WithID(id uuid.UUID) Option {
	return func(r *Role) {
		r.id = id
	}
}

func WithDescription(d string) Option {
	return func(r *Role) {
		r.description = d
	}
}

func WithPermissions(perms []string) Option {
	return func(r *Role) {
		r.permissions = normalize(perms)
	}
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(r *Role) {
		r.createdAt = createdAt
		r.updatedAt = updatedAt
	}
}

func New(name string, roleType Type, opts ...Option) *Role {
	now := time.Now()
	r := &Role{
		id:        uuid.New(),
		name:      name,
		roleType:  roleType,
		createdAt: now,
		updatedAt: now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Role) ID() uuid.UUID {
	return r.id
}

func (r *Role) Name() string {
	return r.name
}

func (r *Role) Type() Type {
	return r.roleType
}

func (r *Role) Description() string {
	return r.description
}

// Permissions returns a sorted copy of the permission set.
func (r *Role) Permissions() []string {
	return slices.Clone(r.permissions)
}

func (r *Role) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Role) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *Role) IsSuperAdmin() bool {
	return r.roleType == TypeSuperAdmin
}

func (r *Role) Has(permission string) bool {
	_, found := slices.BinarySearch(r.permissions, permission)
	return found
}

// HasAny reports whether the role holds at least one of perms.
func (r *Role) HasAny(perms ...string) bool {
	for _, p := range perms {
		if r.Has(p) {
			return true
		}
	}
	return false
}

func (r *Role) Rename(name, description string) {
	r.name = name
	r.description = description
	r.updatedAt = time.Now()
}

func (r *Role) SetPermissions(perms []string) {
	r.permissions = normalize(perms)
	r.updatedAt = time.Now()
}

func normalize(perms []string) []string {
	out := slices.Clone(perms)
	slices.Sort(out)
	return slices.Compact(out)
}

// DisplayName is the seeded name of a built-in role type.
func (t Type) DisplayName() string {
	switch t {
	case TypeSuperAdmin:
		return "Super Administrator"
	case TypeAdminGeneral:
		return "General Administrator"
	case TypeAdminBranch:
		return "Branch Administrator"
	case TypeOperator:
		return "Operator"
	}
	return string(t)
}
