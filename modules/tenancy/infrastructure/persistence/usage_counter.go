package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/usage"
	"github.com/iota-uz/consentia/pkg/composables"
)

var resourceTables = map[plan.Resource]string{
	plan.ResourceUsers:              "users",
	plan.ResourceBranches:           "branches",
	plan.ResourceConsents:           "consents",
	plan.ResourceMedicalRecords:     "medical_records",
	plan.ResourceMRConsentTemplates: "mr_consent_templates",
	plan.ResourceConsentTemplates:   "consent_templates",
	plan.ResourceServices:           "services",
	plan.ResourceQuestions:          "questions",
}

const bytesPerMB = 1024 * 1024

// UsageCounter counts live (non soft-deleted) rows per tenant. Storage is the
// sum of upload sizes rounded up to whole megabytes.
type UsageCounter struct{}

func NewUsageCounter() usage.Counter {
	return &UsageCounter{}
}

func (c *UsageCounter) Count(ctx context.Context, tenantID uuid.UUID, r plan.Resource) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	if r == plan.ResourceStorage {
		var total int64
		if err := tx.QueryRow(
			ctx,
			`SELECT COALESCE(SUM(size), 0)::bigint FROM uploads WHERE tenant_id = $1 AND deleted_at IS NULL`,
			pgUUID(tenantID),
		).Scan(&total); err != nil {
			return 0, errors.Wrap(err, "failed to sum uploads")
		}
		return int((total + bytesPerMB - 1) / bytesPerMB), nil
	}

	table, ok := resourceTables[r]
	if !ok {
		return 0, errors.Errorf("no table for resource %q", r)
	}
	var n int
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE tenant_id = $1 AND deleted_at IS NULL`, table)
	if err := tx.QueryRow(ctx, query, pgUUID(tenantID)).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "failed to count %s", r)
	}
	return n, nil
}
