package application

import (
	"context"
	"database/sql"
	"io/fs"
	"slices"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

type schemaSource struct {
	fsys fs.FS
	dir  string
}

type migrationManager struct {
	pool    *pgxpool.Pool
	logger  *logrus.Logger
	schemas []schemaSource
}

func NewMigrationManager(pool *pgxpool.Pool, logger *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, logger: logger}
}

func (m *migrationManager) RegisterSchema(fsys fs.FS, dir string) {
	m.schemas = append(m.schemas, schemaSource{fsys: fsys, dir: dir})
}

// run opens a database/sql handle over the pool and calls fn once per
// schema. goose keeps its file system in package state, so
// managers must not run concurrently.
func (m *migrationManager) run(ctx context.Context, schemas []schemaSource, fn func(ctx context.Context, db *sql.DB, dir string) error) error {
	if m.pool == nil {
		return errors.New("migrations: no database pool")
	}
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set dialect")
	}
	goose.SetLogger(gooseLogger{m.logger})
	defer goose.SetBaseFS(nil)

	for _, s := range schemas {
		goose.SetBaseFS(s.fsys)
		if err := fn(ctx, db, s.dir); err != nil {
			return errors.Wrapf(err, "migrations in %s", s.dir)
		}
	}
	return nil
}

func (m *migrationManager) Up(ctx context.Context) error {
	return m.run(ctx, m.schemas, func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.UpContext(ctx, db, dir)
	})
}

// Down rolls back the latest migration of every schema, newest schema first.
func (m *migrationManager) Down(ctx context.Context) error {
	schemas := slices.Clone(m.schemas)
	slices.Reverse(schemas)
	return m.run(ctx, schemas, func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.DownContext(ctx, db, dir)
	})
}

func (m *migrationManager) Status(ctx context.Context) error {
	return m.run(ctx, m.schemas, func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.StatusContext(ctx, db, dir)
	})
}

type gooseLogger struct {
	l *logrus.Logger
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	if g.l != nil {
		g.l.Errorf(format, v...)
	}
}

func (g gooseLogger) Printf(format string, v ...any) {
	if g.l != nil {
		g.l.Infof(format, v...)
	}
}
