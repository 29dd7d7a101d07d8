package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"sort"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/pkg/eventbus"
	"github.com/iota-uz/consentia/pkg/serrors"
	"github.com/iota-uz/consentia/pkg/slug"
)

const (
	temporaryPasswordLength   = 12
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
)

// TenantCreation is what post-commit hooks receive once a tenant and its
// first administrator are committed.
type TenantCreation struct {
	Tenant   *tenant.Tenant
	Admin    *user.User
	Password string
}

// PostCommitHook runs after a successful create, outside the transaction.
// A failing or panicking hook is logged and never fails the create.
type PostCommitHook struct {
	Name string
	Run  func(ctx context.Context, c TenantCreation) error
}

type TenantQuery struct {
	Search   string
	Statuses []tenant.Status
}

type TenantService struct {
	options
	tenants   tenant.Repository
	users     user.Repository
	roles     role.Repository
	plans     *PlanService
	notifier  Notifier
	publisher eventbus.EventBus
	hooks     []PostCommitHook
}

// NewTenantService wires the default post-commit hooks in order: settings
// seeding, welcome notification, event publication. Nil collaborators skip
// their hook.
func NewTenantService(
	tenants tenant.Repository,
	users user.Repository,
	roles role.Repository,
	plans *PlanService,
	settings *SettingsService,
	notifier Notifier,
	publisher eventbus.EventBus,
	opts ...Option,
) *TenantService {
	s := &TenantService{
		options:   newOptions(opts),
		tenants:   tenants,
		users:     users,
		roles:     roles,
		plans:     plans,
		notifier:  notifier,
		publisher: publisher,
	}
	if settings != nil {
		s.hooks = append(s.hooks, PostCommitHook{
			Name: "settings",
			Run: func(ctx context.Context, c TenantCreation) error {
				return settings.InitializeTenant(ctx, c.Tenant)
			},
		})
	}
	if notifier != nil {
		s.hooks = append(s.hooks, PostCommitHook{
			Name: "welcome",
			Run: func(ctx context.Context, c TenantCreation) error {
				return notifier.Welcome(ctx, welcomeFor(c.Tenant, c.Admin, c.Password, false))
			},
		})
	}
	if publisher != nil {
		s.hooks = append(s.hooks, PostCommitHook{
			Name: "event",
			Run: func(_ context.Context, c TenantCreation) error {
				publisher.Publish(tenant.CreatedEvent{
					Tenant:     c.Tenant,
					AdminID:    c.Admin.ID(),
					AdminEmail: c.Admin.Email(),
				})
				return nil
			},
		})
	}
	return s
}

func (s *TenantService) AddPostCommitHook(h PostCommitHook) {
	s.hooks = append(s.hooks, h)
}

func (s *TenantService) PostCommitHooks() []PostCommitHook {
	return append([]PostCommitHook(nil), s.hooks...)
}

// ResolveBySlug returns the non-deleted tenant with exactly this slug.
func (s *TenantService) ResolveBySlug(ctx context.Context, value string) (*tenant.Tenant, error) {
	t, err := s.tenants.GetBySlug(ctx, value)
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, serrors.NotFound("tenant %q not found", value)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve tenant")
	}
	return t, nil
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, id)
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, serrors.NotFound("tenant %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tenant")
	}
	return t, nil
}

// List returns tenants filtered by status. A search term ranks name and slug
// matches by fuzzy distance and drops the rest.
func (s *TenantService) List(ctx context.Context, q TenantQuery) ([]*tenant.Tenant, error) {
	all, err := s.tenants.List(ctx, &tenant.FindParams{Statuses: q.Statuses})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tenants")
	}
	if q.Search == "" {
		return all, nil
	}
	words := make([]string, len(all))
	for i, t := range all {
		words[i] = t.Name() + " " + t.Slug()
	}
	ranks := fuzzy.RankFindNormalizedFold(q.Search, words)
	sort.Sort(ranks)

	out := make([]*tenant.Tenant, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, all[rank.OriginalIndex])
	}
	return out, nil
}

// Create persists the tenant and its admin_general user in one transaction,
// then runs the post-commit hooks.
func (s *TenantService) Create(ctx context.Context, dto *tenant.CreateDTO) (*tenant.Tenant, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	value, err := canonicalSlug(dto.Slug, dto.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, value, uuid.Nil); err != nil {
		return nil, err
	}
	taken, err := s.users.EmailExists(ctx, dto.AdminEmail)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check admin email")
	}
	if taken {
		return nil, serrors.Conflict("email", "email is already registered")
	}

	spec, err := s.plans.ApplyDefaults(ctx, dto.Spec(value), s.now())
	if err != nil {
		return nil, err
	}
	adminRole, err := s.role(ctx, role.TypeAdminGeneral)
	if err != nil {
		return nil, err
	}

	t := spec.Build()
	admin := user.New(dto.AdminName, dto.AdminEmail, adminRole.ID(), user.WithTenantID(t.ID()))
	if err := admin.SetPassword(dto.AdminPassword); err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	var created *tenant.Tenant
	var createdAdmin *user.User
	err = s.runInTx(ctx, func(txCtx context.Context) error {
		var err error
		if created, err = s.tenants.Create(txCtx, t); err != nil {
			return err
		}
		createdAdmin, err = s.users.Create(txCtx, admin)
		return err
	})
	if err != nil {
		if errors.Is(err, serrors.ErrConflict) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to create tenant")
	}

	tenantLifecycle.WithLabelValues("created").Inc()
	s.log(ctx).WithFields(logrus.Fields{
		"tenant_id": created.ID(),
		"slug":      created.Slug(),
		"plan":      created.PlanID(),
	}).Info("tenant created")

	s.runPostCommit(ctx, TenantCreation{Tenant: created, Admin: createdAdmin, Password: dto.AdminPassword})
	return created, nil
}

func (s *TenantService) runPostCommit(ctx context.Context, c TenantCreation) {
	for _, h := range s.hooks {
		s.runHook(ctx, h, c)
	}
}

func (s *TenantService) runHook(ctx context.Context, h PostCommitHook, c TenantCreation) {
	logger := s.log(ctx).WithFields(logrus.Fields{"hook": h.Name, "tenant_id": c.Tenant.ID()})
	defer func() {
		if r := recover(); r != nil {
			postCommitFailures.WithLabelValues(h.Name).Inc()
			logger.WithField("panic", r).Error("post-commit hook panicked")
		}
	}()
	if err := h.Run(ctx, c); err != nil {
		postCommitFailures.WithLabelValues(h.Name).Inc()
		logger.WithError(err).Error("post-commit hook failed")
	}
}

// Update applies the non-nil fields of dto. A limit value overrides the plan
// for that resource; a null limit restores the plan's live value.
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, dto *tenant.UpdateDTO) (*tenant.Tenant, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		t.Rename(*dto.Name)
	}
	if dto.Slug != nil && *dto.Slug != t.Slug() {
		value, err := canonicalSlug(*dto.Slug, "")
		if err != nil {
			return nil, err
		}
		if err := s.ensureSlugFree(ctx, value, t.ID()); err != nil {
			return nil, err
		}
		t.SetSlug(value)
	}
	if dto.ContactName != nil || dto.ContactEmail != nil || dto.ContactPhone != nil {
		contact := t.Contact()
		if dto.ContactName != nil {
			contact.Name = *dto.ContactName
		}
		if dto.ContactEmail != nil {
			contact.Email = *dto.ContactEmail
		}
		if dto.ContactPhone != nil {
			contact.Phone = *dto.ContactPhone
		}
		t.SetContact(contact)
	}
	if dto.BillingDay != nil || dto.AutoRenew != nil {
		day, autoRenew := t.BillingDay(), t.AutoRenew()
		if dto.BillingDay != nil {
			day = *dto.BillingDay
		}
		if dto.AutoRenew != nil {
			autoRenew = *dto.AutoRenew
		}
		t.SetBilling(day, autoRenew)
	}
	for _, patch := range dto.LimitPatches() {
		if patch.Value == nil {
			t.ClearOverride(patch.Resource)
			continue
		}
		t.OverrideLimit(patch.Resource, *patch.Value)
	}

	return s.save(ctx, t)
}

// ChangePlan moves the tenant to planID. An empty cycle keeps the current one.
// Limit overrides are dropped.
func (s *TenantService) ChangePlan(ctx context.Context, id uuid.UUID, planID plan.ID, cycle plan.BillingCycle) (*tenant.Tenant, error) {
	if cycle != "" && !cycle.IsValid() {
		return nil, serrors.NewValidationError(serrors.ValidationErrors{"billingCycle": "oneof=monthly annual"})
	}
	p, err := s.plans.Find(ctx, planID)
	if err != nil {
		return nil, err
	}
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cycle == "" {
		cycle = t.BillingCycle()
	}
	from := t.PlanID()
	t.ChangePlan(p, cycle, s.now())

	updated, err := s.save(ctx, t)
	if err != nil {
		return nil, err
	}
	tenantLifecycle.WithLabelValues("plan_changed").Inc()
	s.log(ctx).WithFields(logrus.Fields{
		"tenant_id": id,
		"from":      from,
		"to":        p.ID,
		"cycle":     cycle,
	}).Info("tenant plan changed")
	return updated, nil
}

func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.transition(ctx, id, tenant.StatusSuspended)
}

func (s *TenantService) Activate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.transition(ctx, id, tenant.StatusActive)
}

// transition is a no-op when the tenant already has status to.
func (s *TenantService) transition(ctx context.Context, id uuid.UUID, to tenant.Status) (*tenant.Tenant, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := t.Status()
	if !t.SetStatus(to) {
		return t, nil
	}
	updated, err := s.save(ctx, t)
	if err != nil {
		return nil, err
	}
	s.statusChanged(ctx, id, from, to)
	return updated, nil
}

func (s *TenantService) statusChanged(ctx context.Context, id uuid.UUID, from, to tenant.Status) {
	tenantLifecycle.WithLabelValues(string(to)).Inc()
	s.log(ctx).WithFields(logrus.Fields{"tenant_id": id, "from": from, "to": to}).Info("tenant status changed")
	if s.publisher != nil {
		s.publisher.Publish(tenant.StatusChangedEvent{TenantID: id, From: from, To: to})
	}
}

// Remove soft deletes the tenant and all of its users in one transaction.
func (s *TenantService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	var removedUsers int64
	err := s.runInTx(ctx, func(txCtx context.Context) error {
		n, err := s.users.SoftDeleteByTenant(txCtx, id)
		if err != nil {
			return errors.Wrap(err, "failed to delete tenant users")
		}
		removedUsers = n
		return s.tenants.SoftDelete(txCtx, id)
	})
	if errors.Is(err, tenant.ErrNotFound) {
		return serrors.NotFound("tenant %s not found", id)
	}
	if err != nil {
		return errors.Wrap(err, "failed to delete tenant")
	}

	tenantLifecycle.WithLabelValues("deleted").Inc()
	s.log(ctx).WithFields(logrus.Fields{"tenant_id": id, "users": removedUsers}).Info("tenant deleted")
	if s.publisher != nil {
		s.publisher.Publish(tenant.DeletedEvent{TenantID: id})
	}
	return nil
}

// ExpireTrials marks every trial tenant whose trial ended as expired and
// returns how many were changed.
func (s *TenantService) ExpireTrials(ctx context.Context) (int, error) {
	now := s.now()
	var expired []*tenant.Tenant
	err := s.runInTx(ctx, func(txCtx context.Context) error {
		trials, err := s.tenants.List(txCtx, &tenant.FindParams{Statuses: []tenant.Status{tenant.StatusTrial}})
		if err != nil {
			return errors.Wrap(err, "failed to list trial tenants")
		}
		for _, t := range trials {
			end := t.TrialEndsAt()
			if end == nil || end.After(now) {
				continue
			}
			t.SetStatus(tenant.StatusExpired)
			if _, err := s.tenants.Update(txCtx, t); err != nil {
				return errors.Wrapf(err, "failed to expire tenant %s", t.ID())
			}
			expired = append(expired, t)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, t := range expired {
		s.statusChanged(ctx, t.ID(), tenant.StatusTrial, tenant.StatusExpired)
	}
	return len(expired), nil
}

// ResendWelcome issues a new temporary password to the tenant's first
// admin_general user and sends the welcome notification again.
func (s *TenantService) ResendWelcome(ctx context.Context, id uuid.UUID) (string, error) {
	if s.notifier == nil {
		return "", serrors.Configuration("no notifier configured")
	}
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	adminRole, err := s.role(ctx, role.TypeAdminGeneral)
	if err != nil {
		return "", err
	}
	admin, err := s.users.FirstByTenantAndRole(ctx, id, adminRole.ID())
	if errors.Is(err, user.ErrNotFound) {
		return "", serrors.NotFound("tenant %s has no administrator", id)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to load administrator")
	}

	password, err := temporaryPassword()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate password")
	}
	if err := admin.SetPassword(password); err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, admin.ID(), admin.PasswordHash()); err != nil {
		return "", errors.Wrap(err, "failed to store password")
	}
	if err := s.notifier.Welcome(ctx, welcomeFor(t, admin, password, true)); err != nil {
		return "", errors.Wrap(err, "failed to send welcome notification")
	}
	s.log(ctx).WithFields(logrus.Fields{"tenant_id": id, "to": admin.Email()}).Info("welcome notification resent")
	return admin.Email(), nil
}

func (s *TenantService) save(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	var updated *tenant.Tenant
	err := s.runInTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.tenants.Update(txCtx, t)
		return err
	})
	switch {
	case errors.Is(err, tenant.ErrNotFound):
		return nil, serrors.NotFound("tenant %s not found", t.ID())
	case errors.Is(err, serrors.ErrConflict):
		return nil, err
	case err != nil:
		return nil, errors.Wrap(err, "failed to update tenant")
	}
	return updated, nil
}

func (s *TenantService) ensureSlugFree(ctx context.Context, value string, exclude uuid.UUID) error {
	exists, err := s.tenants.SlugExists(ctx, value, exclude)
	if err != nil {
		return errors.Wrap(err, "failed to check slug")
	}
	if exists {
		return serrors.Conflict("slug", "slug is already taken")
	}
	return nil
}

func (s *TenantService) role(ctx context.Context, t role.Type) (*role.Role, error) {
	r, err := s.roles.GetByType(ctx, t)
	if errors.Is(err, role.ErrNotFound) {
		return nil, serrors.Configuration("role %s is not seeded", t)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load role")
	}
	return r, nil
}

// canonicalSlug normalizes requested, or name when requested is empty, and
// rejects empty and reserved results.
func canonicalSlug(requested, name string) (string, error) {
	source := requested
	if source == "" {
		source = name
	}
	value := slug.Make(source)
	if value == "" {
		return "", serrors.NewValidationError(serrors.ValidationErrors{"slug": "required"})
	}
	if slug.IsReserved(value) {
		return "", serrors.NewValidationError(serrors.ValidationErrors{"slug": "reserved"})
	}
	return value, nil
}

func welcomeFor(t *tenant.Tenant, admin *user.User, password string, generated bool) WelcomeMessage {
	return WelcomeMessage{
		TenantName: t.Name(),
		TenantSlug: t.Slug(),
		AdminName:  admin.Name(),
		AdminEmail: admin.Email(),
		Password:   password,
		Generated:  generated,
	}
}

func temporaryPassword() (string, error) {
	size := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	out := make([]byte, temporaryPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		out[i] = temporaryPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
