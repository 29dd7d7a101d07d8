package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence/models"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/serrors"
)

const roleFindQuery = `SELECT id, name, type, description, permissions, created_at, updated_at FROM roles`

type RoleRepository struct{}

func NewRoleRepository() role.Repository {
	return &RoleRepository{}
}

func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*role.Role, error) {
	roles, err := r.queryRoles(ctx, roleFindQuery+" WHERE id = $1", pgUUID(id))
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, errors.Wrap(role.ErrNotFound, id.String())
	}
	return roles[0], nil
}

func (r *RoleRepository) GetByType(ctx context.Context, t role.Type) (*role.Role, error) {
	roles, err := r.queryRoles(ctx, roleFindQuery+" WHERE type = $1", string(t))
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, errors.Wrap(role.ErrNotFound, string(t))
	}
	return roles[0], nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*role.Role, error) {
	return r.queryRoles(ctx, roleFindQuery+" ORDER BY created_at, name")
}

func (r *RoleRepository) Create(ctx context.Context, data *role.Role) (*role.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m := ToDBRole(data)
	if _, err := tx.Exec(
		ctx,
		`INSERT INTO roles (id, name, type, description, permissions, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Name, m.Type, m.Description, m.Permissions, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return nil, serrors.Conflict("type", "role type already exists")
		}
		return nil, errors.Wrap(err, "failed to insert role")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *RoleRepository) Update(ctx context.Context, data *role.Role) (*role.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m := ToDBRole(data)
	tag, err := tx.Exec(
		ctx,
		`UPDATE roles SET name = $2, description = $3, permissions = $4, updated_at = $5 WHERE id = $1`,
		m.ID, m.Name, m.Description, m.Permissions, m.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update role")
	}
	if tag.RowsAffected() == 0 {
		return nil, errors.Wrap(role.ErrNotFound, data.ID().String())
	}
	return r.GetByID(ctx, data.ID())
}

func (r *RoleRepository) queryRoles(ctx context.Context, query string, args ...any) ([]*role.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var roles []*role.Role
	for rows.Next() {
		var m models.Role
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Type,
			&m.Description,
			&m.Permissions,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan role row")
		}
		roles = append(roles, ToDomainRole(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return roles, nil
}
