package services

import (
	"context"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// SettingsService resolves theming and email settings for exactly one scope.
// A nil tenant id is the global scope; tenant scopes never fall back to it.
type SettingsService struct {
	options
	repo setting.Repository
}

func NewSettingsService(repo setting.Repository, opts ...Option) *SettingsService {
	return &SettingsService{
		options: newOptions(opts),
		repo:    repo,
	}
}

func (s *SettingsService) Resolve(ctx context.Context, tenantID *uuid.UUID) (setting.View, error) {
	rows, err := s.repo.ListByScope(ctx, tenantID)
	if err != nil {
		return setting.View{}, errors.Wrap(err, "failed to load settings")
	}
	return setting.Resolve(setting.Defaults, rows), nil
}

// Upsert writes every key of patch into the scope and returns the new view.
// Unknown keys reject the whole patch.
func (s *SettingsService) Upsert(ctx context.Context, tenantID *uuid.UUID, patch map[string]string) (setting.View, error) {
	if err := checkKeys(patch, setting.IsThemeKey); err != nil {
		return setting.View{}, err
	}
	if err := s.write(ctx, tenantID, patch); err != nil {
		return setting.View{}, err
	}
	return s.Resolve(ctx, tenantID)
}

// InitializeTenant seeds the company block of a new tenant from its contact data.
func (s *SettingsService) InitializeTenant(ctx context.Context, t *tenant.Tenant) error {
	contact := t.Contact()
	seed := map[string]string{setting.KeyCompanyName: t.Name()}
	if contact.Phone != "" {
		seed[setting.KeyCompanyPhone] = contact.Phone
	}
	if contact.Email != "" {
		seed[setting.KeyCompanyEmail] = contact.Email
	}
	id := t.ID()
	return s.write(ctx, &id, seed)
}

// EmailConfig returns the SMTP configuration with the password removed.
func (s *SettingsService) EmailConfig(ctx context.Context, tenantID *uuid.UUID) (setting.EmailConfig, error) {
	rows, err := s.repo.ListByScope(ctx, tenantID)
	if err != nil {
		return setting.EmailConfig{}, errors.Wrap(err, "failed to load settings")
	}
	return setting.Resolve(setting.EmailDefaults, rows).EmailConfig().Redacted(), nil
}

// UpdateEmailConfig stores cfg. An empty password keeps the stored one.
func (s *SettingsService) UpdateEmailConfig(ctx context.Context, tenantID *uuid.UUID, cfg setting.EmailConfig) (setting.EmailConfig, error) {
	if cfg.SMTPPort < 0 || cfg.SMTPPort > 65535 {
		return setting.EmailConfig{}, serrors.NewValidationError(serrors.ValidationErrors{"smtpPort": "range"})
	}
	if cfg.UseCustomEmail && (cfg.SMTPHost == "" || cfg.SMTPFrom == "") {
		return setting.EmailConfig{}, serrors.NewValidationError(serrors.ValidationErrors{
			"smtpHost": "required_with=useCustomEmail",
			"smtpFrom": "required_with=useCustomEmail",
		})
	}
	values := map[string]string{
		setting.KeyUseCustomEmail: strconv.FormatBool(cfg.UseCustomEmail),
		setting.KeySMTPHost:       cfg.SMTPHost,
		setting.KeySMTPPort:       strconv.Itoa(cfg.SMTPPort),
		setting.KeySMTPUser:       cfg.SMTPUser,
		setting.KeySMTPFrom:       cfg.SMTPFrom,
		setting.KeySMTPFromName:   cfg.SMTPFromName,
		setting.KeyUseEncryption:  strconv.FormatBool(cfg.UseEncryption),
	}
	if cfg.SMTPPassword != "" {
		values[setting.KeySMTPPassword] = cfg.SMTPPassword
	}
	if err := s.write(ctx, tenantID, values); err != nil {
		return setting.EmailConfig{}, err
	}
	s.log(ctx).WithField("password_changed", cfg.SMTPPassword != "").Info("email configuration updated")
	return s.EmailConfig(ctx, tenantID)
}

func (s *SettingsService) write(ctx context.Context, tenantID *uuid.UUID, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return s.runInTx(ctx, func(txCtx context.Context) error {
		for _, k := range keys {
			row := setting.Setting{Key: k, Value: values[k], TenantID: tenantID, UpdatedAt: s.now()}
			if err := s.repo.Upsert(txCtx, row); err != nil {
				return errors.Wrapf(err, "failed to upsert setting %q", k)
			}
		}
		return nil
	})
}

func checkKeys(patch map[string]string, known func(string) bool) error {
	fields := serrors.ValidationErrors{}
	for k := range patch {
		if !known(k) {
			fields[k] = "unknown setting"
		}
	}
	if len(fields) > 0 {
		return serrors.NewValidationError(fields)
	}
	return nil
}
