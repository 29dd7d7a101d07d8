package handlers_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/handlers"
	"github.com/iota-uz/consentia/pkg/application"
)

func auditLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["audit"] == "tenant" {
			out = append(out, entry)
		}
	}
	return out
}

func TestTenantEventsHandler_LogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	app := application.New(&application.ApplicationOptions{Logger: logger})
	handlers.RegisterTenantEventHandlers(app)

	id := uuid.New()
	app.EventPublisher().Publish(tenant.StatusChangedEvent{TenantID: id, From: tenant.StatusTrial, To: tenant.StatusSuspended})
	app.EventPublisher().Publish(tenant.DeletedEvent{TenantID: id})
	app.EventPublisher().Publish(tenant.CreatedEvent{})

	lines := auditLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "tenant status changed", lines[0]["msg"])
	assert.Equal(t, id.String(), lines[0]["tenant_id"])
	assert.Equal(t, string(tenant.StatusSuspended), lines[0]["to"])
	assert.Equal(t, "tenant deleted", lines[1]["msg"])
}
