package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence/models"
	"github.com/iota-uz/consentia/pkg/composables"
)

const (
	settingUpsertGlobal = `
		INSERT INTO settings (key, value, tenant_id, created_at, updated_at)
		VALUES ($1, $2, NULL, $3, $3)
		ON CONFLICT (key) WHERE tenant_id IS NULL
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	settingUpsertTenant = `
		INSERT INTO settings (key, value, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $4, $3, $3)
		ON CONFLICT (key, tenant_id) WHERE tenant_id IS NOT NULL
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

type SettingRepository struct{}

func NewSettingRepository() setting.Repository {
	return &SettingRepository{}
}

func (r *SettingRepository) ListByScope(ctx context.Context, tenantID *uuid.UUID) ([]setting.Setting, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	query := `SELECT key, value, tenant_id, updated_at FROM settings WHERE tenant_id IS NULL`
	var args []any
	if tenantID != nil {
		query = `SELECT key, value, tenant_id, updated_at FROM settings WHERE tenant_id = $1`
		args = append(args, pgUUID(*tenantID))
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []setting.Setting
	for rows.Next() {
		var m models.Setting
		if err := rows.Scan(&m.Key, &m.Value, &m.TenantID, &m.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan setting row")
		}
		out = append(out, ToDomainSetting(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, s setting.Setting) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if s.TenantID == nil {
		_, err = tx.Exec(ctx, settingUpsertGlobal, s.Key, s.Value, s.UpdatedAt)
	} else {
		_, err = tx.Exec(ctx, settingUpsertTenant, s.Key, s.Value, s.UpdatedAt, pgUUID(*s.TenantID))
	}
	if err != nil {
		return errors.Wrapf(err, "failed to upsert setting %s", s.Key)
	}
	return nil
}
