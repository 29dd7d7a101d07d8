package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// WelcomeMessage is sent to the first administrator of a new tenant.
// Generated marks a password issued by the platform rather than chosen at
// creation time.
type WelcomeMessage struct {
	TenantName string
	TenantSlug string
	AdminName  string
	AdminEmail string
	LoginURL   string
	Password   string
	Generated  bool
}

// Notifier delivers tenant notifications. Mail transport lives outside this module.
type Notifier interface {
	Welcome(ctx context.Context, msg WelcomeMessage) error
}

// NotificationService is the Notifier used when no mail transport is wired:
// it records every dispatch in the log without the password.
type NotificationService struct {
	options
	origin string
	domain string
}

func NewNotificationService(origin, domain string, opts ...Option) *NotificationService {
	return &NotificationService{
		options: newOptions(opts),
		origin:  origin,
		domain:  domain,
	}
}

// LoginURL is the tenant's subdomain login page.
func (s *NotificationService) LoginURL(slug string) string {
	if s.domain == "" || slug == "" {
		return s.origin + "/login"
	}
	return fmt.Sprintf("https://%s.%s/login", slug, s.domain)
}

func (s *NotificationService) Welcome(ctx context.Context, msg WelcomeMessage) error {
	if msg.AdminEmail == "" {
		return fmt.Errorf("welcome message for %q has no recipient", msg.TenantSlug)
	}
	if msg.LoginURL == "" {
		msg.LoginURL = s.LoginURL(msg.TenantSlug)
	}
	s.log(ctx).WithFields(logrus.Fields{
		"tenant":             msg.TenantSlug,
		"to":                 msg.AdminEmail,
		"login_url":          msg.LoginURL,
		"generated_password": msg.Generated,
	}).Info("welcome notification dispatched")
	return nil
}
