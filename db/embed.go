// Package db carries the SQL migrations applied by the migrate command.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

// MigrationsTable is where goose records applied versions.
const MigrationsTable = "schema_migrations"
