package picksmigrations

import "github.com/uptrace/bun/migrate"

// Migrations is the picks module's migration set.
var Migrations = migrate.NewMigrations()
