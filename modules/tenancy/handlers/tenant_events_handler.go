package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/pkg/application"
)

// TenantEventsHandler writes an audit trail of tenant lifecycle changes.
type TenantEventsHandler struct {
	logger *logrus.Entry
}

func RegisterTenantEventHandlers(app application.Application) *TenantEventsHandler {
	handler := &TenantEventsHandler{
		logger: app.Logger().WithField("audit", "tenant"),
	}
	app.EventPublisher().Subscribe(handler.onTenantCreated)
	app.EventPublisher().Subscribe(handler.onStatusChanged)
	app.EventPublisher().Subscribe(handler.onTenantDeleted)
	return handler
}

func (h *TenantEventsHandler) onTenantCreated(event tenant.CreatedEvent) {
	if event.Tenant == nil {
		return
	}
	h.logger.WithFields(logrus.Fields{
		"tenant_id":   event.Tenant.ID(),
		"slug":        event.Tenant.Slug(),
		"plan":        event.Tenant.PlanID(),
		"status":      event.Tenant.Status(),
		"admin_id":    event.AdminID,
		"admin_email": event.AdminEmail,
	}).Info("tenant created")
}

func (h *TenantEventsHandler) onStatusChanged(event tenant.StatusChangedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id": event.TenantID,
		"from":      event.From,
		"to":        event.To,
	}).Info("tenant status changed")
}

func (h *TenantEventsHandler) onTenantDeleted(event tenant.DeletedEvent) {
	h.logger.WithField("tenant_id", event.TenantID).Info("tenant deleted")
}
