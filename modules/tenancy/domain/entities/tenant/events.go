package tenant

import (
	"github.com/google/uuid"
)

// CreatedEvent is published after a tenant and its administrator are committed.
type CreatedEvent struct {
	Tenant     *Tenant
	AdminID    uuid.UUID
	AdminEmail string
}

type StatusChangedEvent struct {
	TenantID uuid.UUID
	From     Status
	To       Status
}

type DeletedEvent struct {
	TenantID uuid.UUID
}
