package persistence

import "embed"

// MigrationsFS holds the goose migrations of the tenancy schema.
//
//go:embed schema/*.sql
var MigrationsFS embed.FS

const MigrationsDir = "schema"
