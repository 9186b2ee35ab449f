package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry applied by the migrate CLI command.
var Migrations = migrate.NewMigrations()
