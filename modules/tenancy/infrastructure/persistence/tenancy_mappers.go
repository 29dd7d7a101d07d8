package persistence

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence/models"
)

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgUUIDPtr(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgUUID(*id)
}

func fromPgUUIDPtr(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	out := uuid.UUID(id.Bytes)
	return &out
}

func ToDomainTenant(m *models.Tenant) (*tenant.Tenant, error) {
	price, err := decimal.NewFromString(m.PlanPrice)
	if err != nil {
		return nil, err
	}
	limits := plan.Limits{
		Users:              int(m.MaxUsers),
		Branches:           int(m.MaxBranches),
		Consents:           int(m.MaxConsents),
		MedicalRecords:     int(m.MaxMedicalRecords),
		MRConsentTemplates: int(m.MaxMRConsentTpls),
		ConsentTemplates:   int(m.MaxConsentTpls),
		Services:           int(m.MaxServices),
		Questions:          int(m.MaxQuestions),
		StorageMB:          int(m.MaxStorageMB),
	}
	overrides := make([]plan.Resource, 0, len(m.LimitOverrides))
	for _, o := range m.LimitOverrides {
		if r, ok := plan.ParseResource(o); ok {
			overrides = append(overrides, r)
		}
	}
	return tenant.New(
		m.Name,
		m.Slug,
		tenant.WithID(uuid.UUID(m.ID.Bytes)),
		tenant.WithStatus(tenant.Status(m.Status)),
		tenant.WithPlan(plan.ID(m.PlanID), plan.BillingCycle(m.BillingCycle), price),
		tenant.WithPlanPeriod(m.PlanStartedAt, m.PlanExpiresAt),
		tenant.WithBilling(int(m.BillingDay), m.AutoRenew),
		tenant.WithContact(tenant.Contact{
			Name:  m.ContactName,
			Email: m.ContactEmail,
			Phone: m.ContactPhone,
		}),
		tenant.WithLimits(limits, overrides),
		tenant.WithTrialEndsAt(m.TrialEndsAt),
		tenant.WithSubscriptionEndsAt(m.SubscriptionEndsAt),
		tenant.WithCreatedAt(m.CreatedAt),
		tenant.WithUpdatedAt(m.UpdatedAt),
		tenant.WithDeletedAt(m.DeletedAt),
	), nil
}

func ToDBTenant(t *tenant.Tenant) *models.Tenant {
	l := t.Limits()
	overrides := make([]string, 0, len(t.Overrides()))
	for _, r := range t.Overrides() {
		overrides = append(overrides, string(r))
	}
	c := t.Contact()
	return &models.Tenant{
		ID:                 pgUUID(t.ID()),
		Name:               t.Name(),
		Slug:               t.Slug(),
		Status:             string(t.Status()),
		PlanID:             string(t.PlanID()),
		PlanPrice:          t.PlanPrice().String(),
		BillingCycle:       string(t.BillingCycle()),
		PlanStartedAt:      t.PlanStartedAt(),
		PlanExpiresAt:      t.PlanExpiresAt(),
		BillingDay:         int16(t.BillingDay()),
		AutoRenew:          t.AutoRenew(),
		ContactName:        c.Name,
		ContactEmail:       c.Email,
		ContactPhone:       c.Phone,
		MaxUsers:           int32(l.Users),
		MaxBranches:        int32(l.Branches),
		MaxConsents:        int32(l.Consents),
		MaxMedicalRecords:  int32(l.MedicalRecords),
		MaxMRConsentTpls:   int32(l.MRConsentTemplates),
		MaxConsentTpls:     int32(l.ConsentTemplates),
		MaxServices:        int32(l.Services),
		MaxQuestions:       int32(l.Questions),
		MaxStorageMB:       int32(l.StorageMB),
		LimitOverrides:     overrides,
		TrialEndsAt:        t.TrialEndsAt(),
		SubscriptionEndsAt: t.SubscriptionEndsAt(),
		CreatedAt:          t.CreatedAt(),
		UpdatedAt:          t.UpdatedAt(),
		DeletedAt:          t.DeletedAt(),
	}
}

func ToDomainRole(m *models.Role) *role.Role {
	return role.New(
		m.Name,
		role.Type(m.Type),
		role.WithID(uuid.UUID(m.ID.Bytes)),
		role.WithDescription(m.Description),
		role.WithPermissions(m.Permissions),
		role.WithTimestamps(m.CreatedAt, m.UpdatedAt),
	)
}

func ToDBRole(r *role.Role) *models.Role {
	perms := r.Permissions()
	if perms == nil {
		perms = []string{}
	}
	return &models.Role{
		ID:          pgUUID(r.ID()),
		Name:        r.Name(),
		Type:        string(r.Type()),
		Description: r.Description(),
		Permissions: perms,
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}
}

func ToDomainUser(m *models.User) *user.User {
	opts := []user.Option{
		user.WithID(uuid.UUID(m.ID.Bytes)),
		user.WithPasswordHash(m.PasswordHash),
		user.WithTimestamps(m.CreatedAt, m.UpdatedAt),
		user.WithDeletedAt(m.DeletedAt),
	}
	if m.TenantID.Valid {
		opts = append(opts, user.WithTenantID(uuid.UUID(m.TenantID.Bytes)))
	}
	return user.New(m.Name, m.Email, uuid.UUID(m.RoleID.Bytes), opts...)
}

func ToDBUser(u *user.User) *models.User {
	return &models.User{
		ID:           pgUUID(u.ID()),
		TenantID:     pgUUIDPtr(u.TenantID()),
		RoleID:       pgUUID(u.RoleID()),
		Name:         u.Name(),
		Email:        u.Email(),
		PasswordHash: u.PasswordHash(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
		DeletedAt:    u.DeletedAt(),
	}
}

func ToDomainSetting(m *models.Setting) setting.Setting {
	return setting.Setting{
		Key:       m.Key,
		Value:     m.Value,
		TenantID:  fromPgUUIDPtr(m.TenantID),
		UpdatedAt: m.UpdatedAt,
	}
}
