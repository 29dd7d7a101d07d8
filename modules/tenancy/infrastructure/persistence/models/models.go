package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Tenant struct {
	ID                 pgtype.UUID
	Name               string
	Slug               string
	Status             string
	PlanID             string
	PlanPrice          string
	BillingCycle       string
	PlanStartedAt      time.Time
	PlanExpiresAt      time.Time
	BillingDay         int16
	AutoRenew          bool
	ContactName        string
	ContactEmail       string
	ContactPhone       string
	MaxUsers           int32
	MaxBranches        int32
	MaxConsents        int32
	MaxMedicalRecords  int32
	MaxMRConsentTpls   int32
	MaxConsentTpls     int32
	MaxServices        int32
	MaxQuestions       int32
	MaxStorageMB       int32
	LimitOverrides     []string
	TrialEndsAt        *time.Time
	SubscriptionEndsAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

type Role struct {
	ID          pgtype.UUID
	Name        string
	Type        string
	Description string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID           pgtype.UUID
	TenantID     pgtype.UUID
	RoleID       pgtype.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Setting struct {
	Key       string
	Value     string
	TenantID  pgtype.UUID
	UpdatedAt time.Time
}
