package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/pkg/serrors"
)

func TestSettingsService_ScopesNeverFallBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := f.settings.Upsert(ctx, nil, map[string]string{setting.KeyPrimaryColor: "#000000"})
	require.NoError(t, err)

	global, err := f.settings.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "#000000", global.Get(setting.KeyPrimaryColor))

	scoped, err := f.settings.Resolve(ctx, &tenantID)
	require.NoError(t, err)
	assert.Equal(t, setting.Defaults[setting.KeyPrimaryColor], scoped.Get(setting.KeyPrimaryColor))

	scoped, err = f.settings.Upsert(ctx, &tenantID, map[string]string{
		setting.KeyPrimaryColor: "#FF0000",
		setting.KeyLogoSize:     "80",
	})
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", scoped.Get(setting.KeyPrimaryColor))
	assert.Equal(t, 80, scoped.LogoSize())

	global, err = f.settings.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "#000000", global.Get(setting.KeyPrimaryColor))
}

func TestSettingsService_UnknownKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.settings.Upsert(ctx, nil, map[string]string{
		setting.KeyPrimaryColor: "#000000",
		"fontFamily":            "Comic Sans",
	})
	require.ErrorIs(t, err, serrors.ErrValidationFailed)

	_, err = f.settings.Upsert(ctx, nil, map[string]string{setting.KeySMTPPassword: "secret"})
	require.ErrorIs(t, err, serrors.ErrValidationFailed)

	view, err := f.settings.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, setting.Defaults[setting.KeyPrimaryColor], view.Get(setting.KeyPrimaryColor))
}

func TestSettingsService_EmailConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	cfg, err := f.settings.EmailConfig(ctx, &tenantID)
	require.NoError(t, err)
	assert.False(t, cfg.UseCustomEmail)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.False(t, cfg.PasswordSet)

	cfg, err = f.settings.UpdateEmailConfig(ctx, &tenantID, setting.EmailConfig{
		UseCustomEmail: true,
		SMTPHost:       "smtp.clinic.test",
		SMTPPort:       465,
		SMTPUser:       "mailer",
		SMTPPassword:   "s3cret",
		SMTPFrom:       "noreply@clinic.test",
		UseEncryption:  true,
	})
	require.NoError(t, err)
	assert.True(t, cfg.PasswordSet)
	assert.Empty(t, cfg.SMTPPassword)
	assert.Equal(t, 465, cfg.SMTPPort)

	cfg, err = f.settings.UpdateEmailConfig(ctx, &tenantID, setting.EmailConfig{
		UseCustomEmail: true,
		SMTPHost:       "smtp2.clinic.test",
		SMTPPort:       587,
		SMTPFrom:       "noreply@clinic.test",
	})
	require.NoError(t, err)
	assert.True(t, cfg.PasswordSet)
	assert.Equal(t, "smtp2.clinic.test", cfg.SMTPHost)

	_, err = f.settings.UpdateEmailConfig(ctx, &tenantID, setting.EmailConfig{UseCustomEmail: true, SMTPPort: 25})
	require.ErrorIs(t, err, serrors.ErrValidationFailed)

	_, err = f.settings.UpdateEmailConfig(ctx, &tenantID, setting.EmailConfig{SMTPPort: 70000})
	require.ErrorIs(t, err, serrors.ErrValidationFailed)

	public, err := f.settings.Resolve(ctx, &tenantID)
	require.NoError(t, err)
	_, leaked := public.Map()[setting.KeySMTPPassword]
	assert.False(t, leaked)
}
