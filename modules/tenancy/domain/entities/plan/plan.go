package plan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/consentia/pkg/constants"
	"github.com/iota-uz/consentia/pkg/serrors"
)

type ID string

const (
	Free         ID = "free"
	Basic        ID = "basic"
	Professional ID = "professional"
	Enterprise   ID = "enterprise"
	Custom       ID = "custom"
)

type BillingCycle string

const (
	Monthly BillingCycle = "monthly"
	Annual  BillingCycle = "annual"
)

func (c BillingCycle) IsValid() bool {
	return c == Monthly || c == Annual
}

// Renewal returns the end of a period of this cycle starting at from.
func (c BillingCycle) Renewal(from time.Time) time.Time {
	if c == Annual {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

type Backup string

const (
	BackupNone   Backup = "none"
	BackupWeekly Backup = "weekly"
	BackupDaily  Backup = "daily"
)

type Features struct {
	Customization       bool   `json:"customization" yaml:"customization"`
	AdvancedReports     bool   `json:"advancedReports" yaml:"advancedReports"`
	PrioritySupport     bool   `json:"prioritySupport" yaml:"prioritySupport"`
	CustomDomain        bool   `json:"customDomain" yaml:"customDomain"`
	WhiteLabel          bool   `json:"whiteLabel" yaml:"whiteLabel"`
	APIAccess           bool   `json:"apiAccess" yaml:"apiAccess"`
	Backup              Backup `json:"backup" yaml:"backup" validate:"oneof=none weekly daily"`
	SupportResponseTime string `json:"supportResponseTime" yaml:"supportResponseTime"`
}

// Plan is a value object. Copies never share mutable state.
type Plan struct {
	ID           ID              `json:"id" yaml:"id" validate:"required"`
	Name         string          `json:"name" yaml:"name" validate:"required,max=80"`
	Description  string          `json:"description" yaml:"description" validate:"max=500"`
	PriceMonthly decimal.Decimal `json:"priceMonthly" yaml:"priceMonthly"`
	PriceAnnual  decimal.Decimal `json:"priceAnnual" yaml:"priceAnnual"`
	Popular      bool            `json:"popular" yaml:"popular"`
	Limits       Limits          `json:"limits" yaml:"limits"`
	Features     Features        `json:"features" yaml:"features"`
}

func (p Plan) Price(cycle BillingCycle) decimal.Decimal {
	if cycle == Annual {
		return p.PriceAnnual
	}
	return p.PriceMonthly
}

func (p Plan) Validate() error {
	if err := constants.Validate.Struct(p); err != nil {
		return serrors.FromValidator(err)
	}
	fields := serrors.ValidationErrors{}
	if p.PriceMonthly.IsNegative() {
		fields["priceMonthly"] = "gte=0"
	}
	if p.PriceAnnual.IsNegative() {
		fields["priceAnnual"] = "gte=0"
	}
	if len(fields) > 0 {
		return serrors.NewValidationError(fields)
	}
	return nil
}

// Store holds the live plan catalogue. Update runs mutate under the store's
// write lock; readers observe either the old or the new plan, never a mix.
type Store interface {
	Get(ctx context.Context, id ID) (Plan, bool)
	List(ctx context.Context) []Plan
	Update(ctx context.Context, id ID, mutate func(Plan) (Plan, error)) (Plan, error)
}

var ErrPlanNotFound = errors.New("plan not found")
