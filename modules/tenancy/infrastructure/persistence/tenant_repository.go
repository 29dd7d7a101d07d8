package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence/models"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/serrors"
)

const (
	tenantFindQuery = `
		SELECT id, name, slug, status, plan_id, plan_price::text, billing_cycle,
		       plan_started_at, plan_expires_at, billing_day, auto_renew,
		       contact_name, contact_email, contact_phone,
		       max_users, max_branches, max_consents, max_medical_records,
		       max_mr_consent_templates, max_consent_templates, max_services,
		       max_questions, max_storage_mb, limit_overrides,
		       trial_ends_at, subscription_ends_at, created_at, updated_at, deleted_at
		FROM tenants`

	tenantInsertQuery = `
		INSERT INTO tenants (
			id, name, slug, status, plan_id, plan_price, billing_cycle,
			plan_started_at, plan_expires_at, billing_day, auto_renew,
			contact_name, contact_email, contact_phone,
			max_users, max_branches, max_consents, max_medical_records,
			max_mr_consent_templates, max_consent_templates, max_services,
			max_questions, max_storage_mb, limit_overrides,
			trial_ends_at, subscription_ends_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		)`

	tenantUpdateQuery = `
		UPDATE tenants SET
			name = $2, slug = $3, status = $4, plan_id = $5, plan_price = $6,
			billing_cycle = $7, plan_started_at = $8, plan_expires_at = $9,
			billing_day = $10, auto_renew = $11,
			contact_name = $12, contact_email = $13, contact_phone = $14,
			max_users = $15, max_branches = $16, max_consents = $17,
			max_medical_records = $18, max_mr_consent_templates = $19,
			max_consent_templates = $20, max_services = $21, max_questions = $22,
			max_storage_mb = $23, limit_overrides = $24,
			trial_ends_at = $25, subscription_ends_at = $26, updated_at = $27
		WHERE id = $1 AND deleted_at IS NULL`

	tenantSlugConstraint = "tenants_slug_live_key"
)

type TenantRepository struct{}

func NewTenantRepository() tenant.Repository {
	return &TenantRepository{}
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	tenants, err := r.queryTenants(ctx, tenantFindQuery+" WHERE id = $1 AND deleted_at IS NULL", pgUUID(id))
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, errors.Wrap(tenant.ErrNotFound, id.String())
	}
	return tenants[0], nil
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	tenants, err := r.queryTenants(ctx, tenantFindQuery+" WHERE slug = $1 AND deleted_at IS NULL", slug)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, errors.Wrap(tenant.ErrNotFound, slug)
	}
	return tenants[0], nil
}

func (r *TenantRepository) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}
	var exists bool
	if err := tx.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE slug = $1 AND id <> $2 AND deleted_at IS NULL)`,
		slug,
		pgUUID(exclude),
	).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check slug")
	}
	return exists, nil
}

func (r *TenantRepository) List(ctx context.Context, params *tenant.FindParams) ([]*tenant.Tenant, error) {
	query := tenantFindQuery + " WHERE deleted_at IS NULL"
	var args []any
	if params != nil && len(params.Statuses) > 0 {
		statuses := make([]string, 0, len(params.Statuses))
		for _, s := range params.Statuses {
			statuses = append(statuses, string(s))
		}
		query += " AND status = ANY($1)"
		args = append(args, statuses)
	}
	return r.queryTenants(ctx, query+" ORDER BY created_at DESC", args...)
}

func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m := ToDBTenant(t)
	args := append(tenantArgs(m), m.CreatedAt, m.UpdatedAt)
	if _, err := tx.Exec(ctx, tenantInsertQuery, args...); err != nil {
		return nil, mapTenantErr(err)
	}
	return r.GetByID(ctx, t.ID())
}

func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m := ToDBTenant(t)
	args := append(tenantArgs(m), m.UpdatedAt)
	tag, err := tx.Exec(ctx, tenantUpdateQuery, args...)
	if err != nil {
		return nil, mapTenantErr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, errors.Wrap(tenant.ErrNotFound, t.ID().String())
	}
	return r.GetByID(ctx, t.ID())
}

func (r *TenantRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(
		ctx,
		`UPDATE tenants SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		pgUUID(id),
	)
	if err != nil {
		return errors.Wrap(err, "failed to soft delete tenant")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(tenant.ErrNotFound, id.String())
	}
	return nil
}

func tenantArgs(m *models.Tenant) []any {
	return []any{
		m.ID,
		m.Name,
		m.Slug,
		m.Status,
		m.PlanID,
		m.PlanPrice,
		m.BillingCycle,
		m.PlanStartedAt,
		m.PlanExpiresAt,
		m.BillingDay,
		m.AutoRenew,
		m.ContactName,
		m.ContactEmail,
		m.ContactPhone,
		m.MaxUsers,
		m.MaxBranches,
		m.MaxConsents,
		m.MaxMedicalRecords,
		m.MaxMRConsentTpls,
		m.MaxConsentTpls,
		m.MaxServices,
		m.MaxQuestions,
		m.MaxStorageMB,
		m.LimitOverrides,
		m.TrialEndsAt,
		m.SubscriptionEndsAt,
	}
}

func mapTenantErr(err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == tenantSlugConstraint || strings.Contains(constraint, "slug") {
			return serrors.Conflict("slug", "slug is already taken")
		}
		return serrors.Conflict("", "tenant already exists")
	}
	return errors.Wrap(err, "failed to write tenant")
}

func (r *TenantRepository) queryTenants(ctx context.Context, query string, args ...any) ([]*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		var m models.Tenant
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Slug,
			&m.Status,
			&m.PlanID,
			&m.PlanPrice,
			&m.BillingCycle,
			&m.PlanStartedAt,
			&m.PlanExpiresAt,
			&m.BillingDay,
			&m.AutoRenew,
			&m.ContactName,
			&m.ContactEmail,
			&m.ContactPhone,
			&m.MaxUsers,
			&m.MaxBranches,
			&m.MaxConsents,
			&m.MaxMedicalRecords,
			&m.MaxMRConsentTpls,
			&m.MaxConsentTpls,
			&m.MaxServices,
			&m.MaxQuestions,
			&m.MaxStorageMB,
			&m.LimitOverrides,
			&m.TrialEndsAt,
			&m.SubscriptionEndsAt,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan tenant row")
		}
		t, err := ToDomainTenant(&m)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map tenant row")
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return tenants, nil
}
