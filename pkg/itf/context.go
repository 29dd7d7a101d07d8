package itf

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/eventbus"
)

type schema struct {
	fsys fs.FS
	dir  string
}

// TestContext builds an isolated database, migrates it and opens a
// transaction that is rolled back when the test ends.
type TestContext struct {
	ctx     context.Context
	modules []application.Module
	schemas []schema
	dbName  string
	logger  *logrus.Logger
}

func NewTestContext() *TestContext {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return &TestContext{ctx: context.Background(), logger: logger}
}

// WithModules registers modules, including their migrations and services.
func (tc *TestContext) WithModules(modules ...application.Module) *TestContext {
	tc.modules = append(tc.modules, modules...)
	return tc
}

// WithSchema adds a goose migration directory without a full module.
func (tc *TestContext) WithSchema(fsys fs.FS, dir string) *TestContext {
	tc.schemas = append(tc.schemas, schema{fsys: fsys, dir: dir})
	return tc
}

func (tc *TestContext) WithDBName(name string) *TestContext {
	tc.dbName = name
	return tc
}

func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()
	if tc.dbName == "" {
		tc.dbName = tb.Name()
	}
	pool := CreateDB(tb, tc.dbName)

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		Logger:   tc.logger,
		EventBus: eventbus.NewEventPublisher(tc.logger),
	})
	for _, m := range tc.modules {
		if err := m.Register(app); err != nil {
			tb.Fatalf("register module %s: %v", m.Name(), err)
		}
	}
	for _, s := range tc.schemas {
		app.Migrations().RegisterSchema(s.fsys, s.dir)
	}
	if err := app.Migrations().Up(tc.ctx); err != nil {
		tb.Fatalf("migrate: %v", err)
	}

	tx, err := pool.Begin(tc.ctx)
	if err != nil {
		tb.Fatalf("begin: %v", err)
	}
	tb.Cleanup(func() {
		if err := tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tb.Logf("Warning: failed to rollback transaction: %v", err)
		}
	})

	ctx := composables.WithPool(tc.ctx, pool)
	ctx = composables.WithTx(ctx, tx)
	ctx = composables.WithLogger(ctx, logrus.NewEntry(tc.logger))

	return &TestEnvironment{Ctx: ctx, Pool: pool, Tx: tx, App: app}
}

type TestEnvironment struct {
	Ctx  context.Context
	Pool *pgxpool.Pool
	Tx   pgx.Tx
	App  application.Application
}

// GetService retrieves a registered service by type.
func GetService[T any](te *TestEnvironment) *T {
	var zero T
	return te.App.Service(zero).(*T)
}
