package bundb

import (
	"context"
	"fmt"
	"log/slog"

	leaguemigrations "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories/migrations"
	picksmigrations "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories/migrations"
	playoffsmigrations "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Module pairs a module name with its migration set.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules lists module migrations in foreign key order.
func Modules() []Module {
	return []Module{
		{"league", leaguemigrations.Migrations},
		{"picks", picksmigrations.Migrations},
		{"playoffs", playoffsmigrations.Migrations},
	}
}

// NewMigrator returns a migrator with its own bookkeeping tables, so groups
// roll back per module.
func NewMigrator(db *bun.DB, m Module) *migrate.Migrator {
	return migrate.NewMigrator(db, m.Migrations,
		migrate.WithTableName("bun_migrations_"+m.Name),
		migrate.WithLocksTableName("bun_migration_locks_"+m.Name),
	)
}

// Migrate initializes and applies every module's migrations, then River's.
func Migrate(ctx context.Context, db *bun.DB, dsn string, logger *slog.Logger) error {
	for _, m := range Modules() {
		migrator := NewMigrator(db, m)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s migrations: %w", m.Name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", m.Name))
		} else {
			logger.InfoContext(ctx, "Migrated module", slog.String("module", m.Name), slog.String("group", group.String()))
		}
	}
	return MigrateRiver(ctx, dsn, logger)
}

// MigrateRiver applies the River queue schema.
func MigrateRiver(ctx context.Context, dsn string, logger *slog.Logger) error {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN for River migrations: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	logger.InfoContext(ctx, "River migrations completed", slog.Int("versions", len(res.Versions)))
	return nil
}
