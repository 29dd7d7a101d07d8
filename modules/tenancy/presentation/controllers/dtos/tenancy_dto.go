package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Caller    CallerResponse `json:"user"`
}

type CallerResponse struct {
	ID           uuid.UUID     `json:"id"`
	Email        string        `json:"email,omitempty"`
	SuperAdmin   bool          `json:"superAdmin"`
	TenantID     *uuid.UUID    `json:"tenantId,omitempty"`
	TenantStatus tenant.Status `json:"tenantStatus,omitempty"`
	Role         *RoleResponse `json:"role,omitempty"`
	Permissions  []string      `json:"permissions"`
}

func CallerToResponse(c *caller.Caller) CallerResponse {
	resp := CallerResponse{
		ID:          c.UserID,
		Email:       c.Email,
		SuperAdmin:  c.IsSuperAdmin(),
		Permissions: c.Permissions(),
	}
	if id, ok := c.TenantID(); ok {
		resp.TenantID = &id
		resp.TenantStatus = c.TenantStatus
	}
	if c.Role != nil {
		r := RoleToResponse(c.Role)
		resp.Role = &r
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	return resp
}

type ContactResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TenantResponse is the administrative view of a tenant. Limits are the
// effective ones; Overrides names the kinds pinned on the tenant.
type TenantResponse struct {
	ID                 uuid.UUID         `json:"id"`
	Name               string            `json:"name"`
	Slug               string            `json:"slug"`
	Status             tenant.Status     `json:"status"`
	Plan               plan.ID           `json:"plan"`
	PlanPrice          string            `json:"planPrice"`
	BillingCycle       plan.BillingCycle `json:"billingCycle"`
	PlanStartedAt      time.Time         `json:"planStartedAt"`
	PlanExpiresAt      time.Time         `json:"planExpiresAt"`
	BillingDay         int               `json:"billingDay"`
	AutoRenew          bool              `json:"autoRenew"`
	Contact            ContactResponse   `json:"contact"`
	Limits             plan.Limits       `json:"limits"`
	Overrides          []plan.Resource   `json:"overrides"`
	TrialEndsAt        *time.Time        `json:"trialEndsAt,omitempty"`
	SubscriptionEndsAt *time.Time        `json:"subscriptionEndsAt,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// TenantToResponse renders t with limits resolved against p. A zero p falls
// back to the stored limits.
func TenantToResponse(t *tenant.Tenant, p plan.Plan) TenantResponse {
	limits := t.Limits()
	if p.ID != "" {
		limits = t.EffectiveLimits(p)
	}
	overrides := t.Overrides()
	if overrides == nil {
		overrides = []plan.Resource{}
	}
	c := t.Contact()
	return TenantResponse{
		ID:                 t.ID(),
		Name:               t.Name(),
		Slug:               t.Slug(),
		Status:             t.Status(),
		Plan:               t.PlanID(),
		PlanPrice:          t.PlanPrice().StringFixed(2),
		BillingCycle:       t.BillingCycle(),
		PlanStartedAt:      t.PlanStartedAt(),
		PlanExpiresAt:      t.PlanExpiresAt(),
		BillingDay:         t.BillingDay(),
		AutoRenew:          t.AutoRenew(),
		Contact:            ContactResponse{Name: c.Name, Email: c.Email, Phone: c.Phone},
		Limits:             limits,
		Overrides:          overrides,
		TrialEndsAt:        t.TrialEndsAt(),
		SubscriptionEndsAt: t.SubscriptionEndsAt(),
		CreatedAt:          t.CreatedAt(),
		UpdatedAt:          t.UpdatedAt(),
	}
}

// PublicTenantResponse is what an unauthenticated login page may learn.
type PublicTenantResponse struct {
	Name   string        `json:"name"`
	Slug   string        `json:"slug"`
	Status tenant.Status `json:"status"`
	Active bool          `json:"active"`
}

func TenantToPublicResponse(t *tenant.Tenant) PublicTenantResponse {
	return PublicTenantResponse{
		Name:   t.Name(),
		Slug:   t.Slug(),
		Status: t.Status(),
		Active: t.Status().IsOperational(),
	}
}

type ChangePlanRequest struct {
	Plan         plan.ID           `json:"plan"`
	BillingCycle plan.BillingCycle `json:"billingCycle"`
}

type WelcomeResponse struct {
	SentTo string `json:"sentTo"`
}

type ExpireTrialsResponse struct {
	Expired int `json:"expired"`
}

type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        role.Type `json:"type"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func RoleToResponse(r *role.Role) RoleResponse {
	perms := r.Permissions()
	if perms == nil {
		perms = []string{}
	}
	return RoleResponse{
		ID:          r.ID(),
		Name:        r.Name(),
		Type:        r.Type(),
		Description: r.Description(),
		Permissions: perms,
		UpdatedAt:   r.UpdatedAt(),
	}
}

func RolesToResponse(roles []*role.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleToResponse(r))
	}
	return out
}

type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	RoleID    uuid.UUID  `json:"roleId"`
	TenantID  *uuid.UUID `json:"tenantId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func UserToResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		RoleID:    u.RoleID(),
		TenantID:  u.TenantID(),
		CreatedAt: u.CreatedAt(),
	}
}

func UsersToResponse(users []*user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserToResponse(u))
	}
	return out
}
