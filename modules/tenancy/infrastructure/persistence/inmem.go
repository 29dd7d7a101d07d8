package persistence

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/domain/usage"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence/models"
	"github.com/iota-uz/consentia/pkg/serrors"
)

type settingScope struct {
	key    string
	tenant uuid.UUID
}

type usageKey struct {
	tenant   uuid.UUID
	resource plan.Resource
}

type memState struct {
	tenants  map[uuid.UUID]models.Tenant
	users    map[uuid.UUID]models.User
	roles    map[uuid.UUID]models.Role
	settings map[settingScope]models.Setting
	usage    map[usageKey]int
}

func (s memState) clone() memState {
	return memState{
		tenants:  maps.Clone(s.tenants),
		users:    maps.Clone(s.users),
		roles:    maps.Clone(s.roles),
		settings: maps.Clone(s.settings),
		usage:    maps.Clone(s.usage),
	}
}

// InMemory is a process-local implementation of every tenancy repository.
// Rows are stored as persistence models so callers never share aggregates.
// InTx restores the previous state when fn fails; transactions are not
// isolated from each other.
type InMemory struct {
	mu    sync.RWMutex
	state memState
}

func NewInMemory() *InMemory {
	return &InMemory{state: memState{
		tenants:  map[uuid.UUID]models.Tenant{},
		users:    map[uuid.UUID]models.User{},
		roles:    map[uuid.UUID]models.Role{},
		settings: map[settingScope]models.Setting{},
		usage:    map[usageKey]int{},
	}}
}

func (m *InMemory) InTx(ctx context.Context, fn func(context.Context) error) error {
	m.mu.RLock()
	saved := m.state.clone()
	m.mu.RUnlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.state = saved
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *InMemory) Tenants() tenant.Repository {
	return &memTenants{m}
}

func (m *InMemory) Users() user.Repository {
	return &memUsers{m}
}

func (m *InMemory) Roles() role.Repository {
	return &memRoles{m}
}

func (m *InMemory) Settings() setting.Repository {
	return &memSettings{m}
}

// Usage counts users from the user table; other resources report the value
// last given to SetUsage.
func (m *InMemory) Usage() usage.Counter {
	return &memUsage{m}
}

func (m *InMemory) SetUsage(tenantID uuid.UUID, r plan.Resource, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.usage[usageKey{tenantID, r}] = n
}

type memTenants struct{ m *InMemory }

func (r *memTenants) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	row, ok := r.m.state.tenants[id]
	if !ok || row.DeletedAt != nil {
		return nil, errors.Wrap(tenant.ErrNotFound, id.String())
	}
	return ToDomainTenant(&row)
}

func (r *memTenants) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, row := range r.m.state.tenants {
		if row.Slug == slug && row.DeletedAt == nil {
			return ToDomainTenant(&row)
		}
	}
	return nil, errors.Wrap(tenant.ErrNotFound, slug)
}

func (r *memTenants) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return r.slugTaken(slug, exclude), nil
}

func (r *memTenants) slugTaken(slug string, exclude uuid.UUID) bool {
	for id, row := range r.m.state.tenants {
		if id != exclude && row.Slug == slug && row.DeletedAt == nil {
			return true
		}
	}
	return false
}

func (r *memTenants) List(_ context.Context, params *tenant.FindParams) ([]*tenant.Tenant, error) {
	r.m.mu.RLock()
	rows := make([]models.Tenant, 0, len(r.m.state.tenants))
	for _, row := range r.m.state.tenants {
		if row.DeletedAt != nil {
			continue
		}
		if params != nil && len(params.Statuses) > 0 && !slices.Contains(params.Statuses, tenant.Status(row.Status)) {
			continue
		}
		rows = append(rows, row)
	}
	r.m.mu.RUnlock()

	slices.SortFunc(rows, func(a, b models.Tenant) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	out := make([]*tenant.Tenant, 0, len(rows))
	for i := range rows {
		t, err := ToDomainTenant(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memTenants) Create(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	r.m.mu.Lock()
	if r.slugTaken(t.Slug(), t.ID()) {
		r.m.mu.Unlock()
		return nil, serrors.Conflict("slug", "slug is already taken")
	}
	r.m.state.tenants[t.ID()] = *ToDBTenant(t)
	r.m.mu.Unlock()
	return r.GetByID(ctx, t.ID())
}

func (r *memTenants) Update(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	r.m.mu.Lock()
	row, ok := r.m.state.tenants[t.ID()]
	if !ok || row.DeletedAt != nil {
		r.m.mu.Unlock()
		return nil, errors.Wrap(tenant.ErrNotFound, t.ID().String())
	}
	if r.slugTaken(t.Slug(), t.ID()) {
		r.m.mu.Unlock()
		return nil, serrors.Conflict("slug", "slug is already taken")
	}
	next := *ToDBTenant(t)
	next.CreatedAt = row.CreatedAt
	r.m.state.tenants[t.ID()] = next
	r.m.mu.Unlock()
	return r.GetByID(ctx, t.ID())
}

func (r *memTenants) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	row, ok := r.m.state.tenants[id]
	if !ok || row.DeletedAt != nil {
		return errors.Wrap(tenant.ErrNotFound, id.String())
	}
	now := time.Now()
	row.DeletedAt = &now
	row.UpdatedAt = now
	r.m.state.tenants[id] = row
	return nil
}

type memUsers struct{ m *InMemory }

func (r *memUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	row, ok := r.m.state.users[id]
	if !ok || row.DeletedAt != nil {
		return nil, errors.Wrap(user.ErrNotFound, id.String())
	}
	return ToDomainUser(&row), nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, row := range r.m.state.users {
		if row.Email == email && row.DeletedAt == nil {
			return ToDomainUser(&row), nil
		}
	}
	return nil, errors.Wrap(user.ErrNotFound, email)
}

func (r *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUsers) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*user.User, error) {
	r.m.mu.RLock()
	rows := make([]models.User, 0)
	for _, row := range r.m.state.users {
		if row.DeletedAt == nil && row.TenantID.Valid && uuid.UUID(row.TenantID.Bytes) == tenantID {
			rows = append(rows, row)
		}
	}
	r.m.mu.RUnlock()

	slices.SortFunc(rows, func(a, b models.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	out := make([]*user.User, 0, len(rows))
	for i := range rows {
		out = append(out, ToDomainUser(&rows[i]))
	}
	return out, nil
}

func (r *memUsers) FirstByTenantAndRole(ctx context.Context, tenantID, roleID uuid.UUID) (*user.User, error) {
	users, err := r.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.RoleID() == roleID {
			return u, nil
		}
	}
	return nil, errors.Wrap(user.ErrNotFound, tenantID.String())
}

func (r *memUsers) Create(ctx context.Context, u *user.User) (*user.User, error) {
	r.m.mu.Lock()
	for _, row := range r.m.state.users {
		if row.Email == u.Email() && row.DeletedAt == nil {
			r.m.mu.Unlock()
			return nil, serrors.Conflict("email", "email is already registered")
		}
	}
	r.m.state.users[u.ID()] = *ToDBUser(u)
	r.m.mu.Unlock()
	return r.GetByID(ctx, u.ID())
}

func (r *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	row, ok := r.m.state.users[id]
	if !ok || row.DeletedAt != nil {
		return errors.Wrap(user.ErrNotFound, id.String())
	}
	row.PasswordHash = hash
	row.UpdatedAt = time.Now()
	r.m.state.users[id] = row
	return nil
}

func (r *memUsers) SoftDeleteByTenant(_ context.Context, tenantID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := time.Now()
	var n int64
	for id, row := range r.m.state.users {
		if row.DeletedAt == nil && row.TenantID.Valid && uuid.UUID(row.TenantID.Bytes) == tenantID {
			row.DeletedAt = &now
			row.UpdatedAt = now
			r.m.state.users[id] = row
			n++
		}
	}
	return n, nil
}

type memRoles struct{ m *InMemory }

func (r *memRoles) GetByID(_ context.Context, id uuid.UUID) (*role.Role, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	row, ok := r.m.state.roles[id]
	if !ok {
		return nil, errors.Wrap(role.ErrNotFound, id.String())
	}
	return ToDomainRole(&row), nil
}

func (r *memRoles) GetByType(_ context.Context, t role.Type) (*role.Role, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, row := range r.m.state.roles {
		if row.Type == string(t) {
			return ToDomainRole(&row), nil
		}
	}
	return nil, errors.Wrap(role.ErrNotFound, string(t))
}

func (r *memRoles) List(_ context.Context) ([]*role.Role, error) {
	r.m.mu.RLock()
	rows := slices.Collect(maps.Values(r.m.state.roles))
	r.m.mu.RUnlock()

	slices.SortFunc(rows, func(a, b models.Role) int {
		return slices.Index(role.Types, role.Type(a.Type)) - slices.Index(role.Types, role.Type(b.Type))
	})
	out := make([]*role.Role, 0, len(rows))
	for i := range rows {
		out = append(out, ToDomainRole(&rows[i]))
	}
	return out, nil
}

func (r *memRoles) Create(ctx context.Context, data *role.Role) (*role.Role, error) {
	r.m.mu.Lock()
	for _, row := range r.m.state.roles {
		if row.Type == string(data.Type()) {
			r.m.mu.Unlock()
			return nil, serrors.Conflict("type", "role type already exists")
		}
	}
	r.m.state.roles[data.ID()] = *ToDBRole(data)
	r.m.mu.Unlock()
	return r.GetByID(ctx, data.ID())
}

func (r *memRoles) Update(ctx context.Context, data *role.Role) (*role.Role, error) {
	r.m.mu.Lock()
	row, ok := r.m.state.roles[data.ID()]
	if !ok {
		r.m.mu.Unlock()
		return nil, errors.Wrap(role.ErrNotFound, data.ID().String())
	}
	next := *ToDBRole(data)
	next.Type = row.Type
	next.CreatedAt = row.CreatedAt
	r.m.state.roles[data.ID()] = next
	r.m.mu.Unlock()
	return r.GetByID(ctx, data.ID())
}

type memSettings struct{ m *InMemory }

func scopeOf(key string, tenantID *uuid.UUID) settingScope {
	if tenantID == nil {
		return settingScope{key: key}
	}
	return settingScope{key: key, tenant: *tenantID}
}

func (r *memSettings) ListByScope(_ context.Context, tenantID *uuid.UUID) ([]setting.Setting, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []setting.Setting
	for _, row := range r.m.state.settings {
		if row.TenantID.Valid != (tenantID != nil) {
			continue
		}
		if tenantID != nil && uuid.UUID(row.TenantID.Bytes) != *tenantID {
			continue
		}
		out = append(out, ToDomainSetting(&row))
	}
	slices.SortFunc(out, func(a, b setting.Setting) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out, nil
}

func (r *memSettings) Upsert(_ context.Context, s setting.Setting) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.state.settings[scopeOf(s.Key, s.TenantID)] = models.Setting{
		Key:       s.Key,
		Value:     s.Value,
		TenantID:  pgUUIDPtr(s.TenantID),
		UpdatedAt: s.UpdatedAt,
	}
	return nil
}

type memUsage struct{ m *InMemory }

func (c *memUsage) Count(_ context.Context, tenantID uuid.UUID, r plan.Resource) (int, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	if r != plan.ResourceUsers {
		return c.m.state.usage[usageKey{tenantID, r}], nil
	}
	n := 0
	for _, row := range c.m.state.users {
		if row.DeletedAt == nil && row.TenantID.Valid && uuid.UUID(row.TenantID.Bytes) == tenantID {
			n++
		}
	}
	return n, nil
}
