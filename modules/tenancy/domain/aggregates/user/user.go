package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is the account record this module needs: credentials, tenant
// membership and role.
type User struct {
	id           uuid.UUID
	tenantID     *uuid.UUID
	roleID       uuid.UUID
	name         string
	email        string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

type Option func(*User)

func WithID(id uuid.UUID) Option {
	return func(u *User) {
		u.id = id
	}
}

// WithTenantID binds the user to a tenant. Users without one belong to the
// super-tenant.
func WithTenantID(id uuid.UUID) Option {
	return func(u *User) {
		u.tenantID = &id
	}
}

func WithPasswordHash(hash string) Option {
	return func(u *User) {
		u.passwordHash = hash
	}
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(u *User) {
		u.createdAt = createdAt
		u.updatedAt = updatedAt
	}
}

func WithDeletedAt(at *time.Time) Option {
	return func(u *User) {
		u.deletedAt = at
	}
}

func New(name, email string, roleID uuid.UUID, opts ...Option) *User {
	now := time.Now()
	u := &User{
		id:        uuid.New(),
		roleID:    roleID,
		name:      name,
		email:     NormalizeEmail(email),
		createdAt: now,
		updatedAt: now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) ID() uuid.UUID {
	return u.id
}

func (u *User) TenantID() *uuid.UUID {
	return u.tenantID
}

func (u *User) RoleID() uuid.UUID {
	return u.roleID
}

func (u *User) Name() string {
	return u.name
}

func (u *User) Email() string {
	return u.email
}

func (u *User) PasswordHash() string {
	return u.passwordHash
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) DeletedAt() *time.Time {
	return u.deletedAt
}

func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.passwordHash = string(hash)
	u.updatedAt = time.Now()
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	if u.passwordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(plain)) == nil
}
