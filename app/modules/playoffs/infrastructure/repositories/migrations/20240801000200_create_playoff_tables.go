package playoffsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating playoff tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS playoffs (
					id BIGSERIAL PRIMARY KEY,
					league_id BIGINT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					season SMALLINT NOT NULL,
					kickoff TIMESTAMPTZ NOT NULL,
					UNIQUE (league_id, season)
				);

				CREATE TABLE IF NOT EXISTS playoff_teams (
					id BIGSERIAL PRIMARY KEY,
					playoff_id BIGINT NOT NULL REFERENCES playoffs(id) ON DELETE CASCADE,
					team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					seed SMALLINT NOT NULL CHECK (seed > 0),
					UNIQUE (playoff_id, team_id)
				);

				CREATE TABLE IF NOT EXISTS playoff_picks (
					id BIGSERIAL PRIMARY KEY,
					playoff_id BIGINT NOT NULL REFERENCES playoffs(id) ON DELETE CASCADE,
					user_id VARCHAR(64),
					picks JSONB NOT NULL DEFAULT '{}'::jsonb,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (playoff_id, user_id)
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_playoff_picks_admin
					ON playoff_picks (playoff_id) WHERE user_id IS NULL;
			`); err != nil {
				return fmt.Errorf("failed to create playoff tables: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping playoff tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS playoff_picks;
			DROP TABLE IF EXISTS playoff_teams;
			DROP TABLE IF EXISTS playoffs;
		`)
		return err
	})
}
