package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence/models"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/serrors"
)

const userFindQuery = `
	SELECT id, tenant_id, role_id, name, email, password_hash, created_at, updated_at, deleted_at
	FROM users`

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.one(ctx, userFindQuery+" WHERE id = $1 AND deleted_at IS NULL", id.String(), pgUUID(id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	return r.one(ctx, userFindQuery+" WHERE email = $1 AND deleted_at IS NULL", email, email)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}
	var exists bool
	if err := tx.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`,
		user.NormalizeEmail(email),
	).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check email")
	}
	return exists, nil
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*user.User, error) {
	return r.queryUsers(ctx, userFindQuery+" WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY created_at", pgUUID(tenantID))
}

func (r *UserRepository) FirstByTenantAndRole(ctx context.Context, tenantID, roleID uuid.UUID) (*user.User, error) {
	return r.one(
		ctx,
		userFindQuery+" WHERE tenant_id = $1 AND role_id = $2 AND deleted_at IS NULL ORDER BY created_at LIMIT 1",
		tenantID.String(),
		pgUUID(tenantID),
		pgUUID(roleID),
	)
}

func (r *UserRepository) Create(ctx context.Context, data *user.User) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m := ToDBUser(data)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO users (id, tenant_id, role_id, name, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.TenantID, m.RoleID, m.Name, m.Email, m.PasswordHash, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return nil, serrors.Conflict("email", "email is already registered")
		}
		return nil, errors.Wrap(err, "failed to insert user")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(
		ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		pgUUID(id),
		hash,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update password")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(user.ErrNotFound, id.String())
	}
	return nil
}

func (r *UserRepository) SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(
		ctx,
		`UPDATE users SET deleted_at = now(), updated_at = now() WHERE tenant_id = $1 AND deleted_at IS NULL`,
		pgUUID(tenantID),
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to soft delete tenant users")
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) one(ctx context.Context, query, ref string, args ...any) (*user.User, error) {
	users, err := r.queryUsers(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.Wrap(user.ErrNotFound, ref)
	}
	return users[0], nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var m models.User
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.RoleID,
			&m.Name,
			&m.Email,
			&m.PasswordHash,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		users = append(users, ToDomainUser(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return users, nil
}
