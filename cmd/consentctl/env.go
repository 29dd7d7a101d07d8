package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/modules"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/configuration"
	"github.com/iota-uz/consentia/pkg/eventbus"
)

// env is a loaded application. ctx carries the pool when one was opened.
type env struct {
	ctx    context.Context
	app    application.Application
	logger *logrus.Logger
	pool   *pgxpool.Pool
}

func (e *env) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

// bootstrap loads the configuration and every module. withDB opens the pool.
func bootstrap(ctx context.Context, withDB bool) (*env, error) {
	conf := configuration.Use()
	logger := conf.Logger()

	var pool *pgxpool.Pool
	if withDB {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		var err error
		pool, err = pgxpool.New(connectCtx, conf.Database.Opts)
		if err != nil {
			return nil, withCode(exitDB, fmt.Errorf("db connect failed: %w", err))
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, withCode(exitDB, fmt.Errorf("db ping failed: %w", err))
		}
		ctx = composables.WithPool(ctx, pool)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	return &env{ctx: ctx, app: app, logger: logger, pool: pool}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}
