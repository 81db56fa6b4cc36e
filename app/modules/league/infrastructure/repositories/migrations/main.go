package leaguemigrations

import "github.com/uptrace/bun/migrate"

// Migrations is the league module's migration set.
var Migrations = migrate.NewMigrations()
