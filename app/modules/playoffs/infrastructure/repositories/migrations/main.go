package playoffsmigrations

import "github.com/uptrace/bun/migrate"

// Migrations is the playoffs module's migration set.
var Migrations = migrate.NewMigrations()
