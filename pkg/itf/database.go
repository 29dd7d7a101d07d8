// Package itf holds integration-test helpers that run against a real
// PostgreSQL. Every helper skips the calling test when the server is not
// reachable, so package tests stay green on machines without a database.
package itf

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/consentia/pkg/configuration"
)

const (
	// PostgreSQL identifiers are capped at 63 bytes.
	maxDBNameLength = 63
	hashSuffixLen   = 9
)

// DatabaseOptions reads DB_* variables without loading the full configuration.
func DatabaseOptions(tb testing.TB) configuration.DatabaseOptions {
	tb.Helper()
	var opts configuration.DatabaseOptions
	if err := env.Parse(&opts); err != nil {
		tb.Fatalf("parse database options: %v", err)
	}
	return opts
}

func connString(opts configuration.DatabaseOptions, dbName string) string {
	opts.Name = dbName
	return opts.ConnectionString()
}

// sanitizeDBName lowercases name, folds every non [a-z0-9_] rune into an
// underscore and keeps the result within the identifier limit.
func sanitizeDBName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	sanitized := b.String()
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "test_db"
	}
	if len(sanitized) <= maxDBNameLength {
		return sanitized
	}
	sum := fmt.Sprintf("%x", sha256.Sum256([]byte(name)))[:8]
	return sanitized[:maxDBNameLength-hashSuffixLen] + "_" + sum
}

// CreateDB recreates a database named after the test and returns a pool on
// it. The pool is closed when the test ends.
func CreateDB(tb testing.TB, name string) *pgxpool.Pool {
	tb.Helper()
	opts := DatabaseOptions(tb)
	dbName := sanitizeDBName(name)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	admin, err := pgx.Connect(ctx, connString(opts, "postgres"))
	if err != nil {
		tb.Skipf("postgres not reachable at %s:%s: %v", opts.Host, opts.Port, err)
	}
	defer func() { _ = admin.Close(context.Background()) }()

	ident := pgx.Identifier{dbName}.Sanitize()
	if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+ident+" WITH (FORCE)"); err != nil {
		tb.Fatalf("drop database %s: %v", dbName, err)
	}
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		tb.Fatalf("create database %s: %v", dbName, err)
	}

	pool := NewPool(tb, connString(opts, dbName))
	tb.Cleanup(pool.Close)
	return pool
}

func NewPool(tb testing.TB, dsn string) *pgxpool.Pool {
	tb.Helper()
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		tb.Fatalf("parse dsn: %v", err)
	}
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 30 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		tb.Fatalf("create database pool: %v", err)
	}
	return pool
}
