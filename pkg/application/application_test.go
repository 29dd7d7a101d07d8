package application

import (
	"context"
	"errors"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubController struct{ key string }

func (c stubController) Register(*mux.Router) {}
func (c stubController) Key() string          { return c.key }

type greeter struct{ greeting string }

func TestApplication_ServiceRegistry(t *testing.T) {
	app := New(&ApplicationOptions{})
	svc := &greeter{greeting: "hi"}
	app.RegisterServices(svc)

	got := app.Service(greeter{}).(*greeter)
	assert.Same(t, svc, got)
	assert.Len(t, app.Services(), 1)
	assert.Panics(t, func() { app.Service(stubController{}) })
}

func TestApplication_ControllersSortedAndDeduplicated(t *testing.T) {
	app := New(&ApplicationOptions{})
	app.RegisterControllers(stubController{"/b"}, stubController{"/a"}, stubController{"/b"})

	keys := []string{}
	for _, c := range app.Controllers() {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"/a", "/b"}, keys)
	assert.NotNil(t, app.EventPublisher())
	assert.NotNil(t, app.Logger())
}

func TestSeeder_RunsInOrderAndStopsOnError(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	s := NewSeeder(nil)
	s.Register(
		func(context.Context, Application) error { order = append(order, 1); return nil },
		func(context.Context, Application) error { order = append(order, 2); return boom },
		func(context.Context, Application) error { order = append(order, 3); return nil },
	)

	err := s.Seed(context.Background(), New(&ApplicationOptions{}))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, order)
}

func TestMigrationManager_RequiresPool(t *testing.T) {
	m := NewMigrationManager(nil, nil)
	assert.Error(t, m.Up(context.Background()))
	assert.Error(t, m.Down(context.Background()))
	assert.Error(t, m.Status(context.Background()))
}
