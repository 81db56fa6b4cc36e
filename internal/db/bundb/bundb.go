package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Open connects to Postgres, pings it and registers the picker models.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*bun.DB, error) {
	sqldb, err := pgConn(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	leaguedb.RegisterModels(db)

	if logger != nil {
		db.AddQueryHook(&slowQueryHook{logger: logger, threshold: 500 * time.Millisecond})
	}
	return db, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}

// slowQueryHook logs queries slower than threshold at warn.
type slowQueryHook struct {
	logger    *slog.Logger
	threshold time.Duration
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	if elapsed < h.threshold {
		return
	}
	h.logger.WarnContext(ctx, "Slow query",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", event.Operation()),
		attr.Duration("elapsed", elapsed),
		attr.String("query", event.Query),
	)
}
