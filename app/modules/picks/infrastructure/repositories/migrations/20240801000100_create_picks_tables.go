package picksmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating picks tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS picksets (
					id BIGSERIAL PRIMARY KEY,
					user_id VARCHAR(64) NOT NULL,
					gameset_id BIGINT NOT NULL REFERENCES gamesets(id) ON DELETE CASCADE,
					strategy VARCHAR(4) NOT NULL DEFAULT 'USER' CHECK (strategy IN ('USER', 'RAND', 'HOME', 'BEST')),
					points SMALLINT NOT NULL DEFAULT 0 CHECK (points >= 0),
					correct SMALLINT NOT NULL DEFAULT 0,
					wrong SMALLINT NOT NULL DEFAULT 0,
					is_winner BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (user_id, gameset_id)
				);

				CREATE TABLE IF NOT EXISTS gamepicks (
					id BIGSERIAL PRIMARY KEY,
					pickset_id BIGINT NOT NULL REFERENCES picksets(id) ON DELETE CASCADE,
					game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					winner_id BIGINT REFERENCES teams(id) ON DELETE SET NULL,
					is_tie BOOLEAN NOT NULL DEFAULT FALSE,
					UNIQUE (pickset_id, game_id),
					CHECK (NOT (is_tie AND winner_id IS NOT NULL))
				);
			`); err != nil {
				return fmt.Errorf("failed to create pickset tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS picker_preferences (
					user_id VARCHAR(64) PRIMARY KEY,
					autopick VARCHAR(4) NOT NULL DEFAULT 'RAND' CHECK (autopick IN ('NONE', 'RAND', 'HOME', 'BEST'))
				);

				CREATE TABLE IF NOT EXISTS picker_groups (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(75) NOT NULL UNIQUE,
					status VARCHAR(4) NOT NULL DEFAULT 'ACTV',
					category VARCHAR(3) NOT NULL DEFAULT 'PVT'
				);

				CREATE TABLE IF NOT EXISTS picker_group_leagues (
					group_id BIGINT NOT NULL REFERENCES picker_groups(id) ON DELETE CASCADE,
					league_id BIGINT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					PRIMARY KEY (group_id, league_id)
				);

				CREATE TABLE IF NOT EXISTS picker_memberships (
					id BIGSERIAL PRIMARY KEY,
					user_id VARCHAR(64) NOT NULL,
					group_id BIGINT NOT NULL REFERENCES picker_groups(id) ON DELETE CASCADE,
					status VARCHAR(4) NOT NULL DEFAULT 'ACTV',
					UNIQUE (user_id, group_id)
				);

				CREATE TABLE IF NOT EXISTS picker_favorites (
					user_id VARCHAR(64) NOT NULL,
					league_id BIGINT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					team_id BIGINT REFERENCES teams(id) ON DELETE SET NULL,
					PRIMARY KEY (user_id, league_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create membership tables: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping picks tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS picker_favorites;
			DROP TABLE IF EXISTS picker_memberships;
			DROP TABLE IF EXISTS picker_group_leagues;
			DROP TABLE IF EXISTS picker_groups;
			DROP TABLE IF EXISTS picker_preferences;
			DROP TABLE IF EXISTS gamepicks;
			DROP TABLE IF EXISTS picksets;
		`)
		return err
	})
}
