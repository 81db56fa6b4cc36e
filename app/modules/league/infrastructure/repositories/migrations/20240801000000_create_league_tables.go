package leaguemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating league tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS leagues (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(50) NOT NULL,
					abbr VARCHAR(8) NOT NULL UNIQUE,
					slug VARCHAR(50) NOT NULL UNIQUE,
					current_season INTEGER NOT NULL DEFAULT 0,
					avg_game_duration INTEGER NOT NULL DEFAULT 240,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS conferences (
					id BIGSERIAL PRIMARY KEY,
					league_id BIGINT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					name VARCHAR(50) NOT NULL,
					abbr VARCHAR(8) NOT NULL,
					UNIQUE (league_id, abbr)
				);

				CREATE TABLE IF NOT EXISTS divisions (
					id BIGSERIAL PRIMARY KEY,
					conference_id BIGINT NOT NULL REFERENCES conferences(id) ON DELETE CASCADE,
					name VARCHAR(50) NOT NULL,
					UNIQUE (conference_id, name)
				);

				CREATE TABLE IF NOT EXISTS teams (
					id BIGSERIAL PRIMARY KEY,
					league_id BIGINT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					conference_id BIGINT REFERENCES conferences(id) ON DELETE SET NULL,
					division_id BIGINT REFERENCES divisions(id) ON DELETE SET NULL,
					abbr VARCHAR(8) NOT NULL CHECK (abbr <> '' AND left(abbr, 2) <> '__'),
					name VARCHAR(50) NOT NULL,
					nickname VARCHAR(50) NOT NULL DEFAULT '',
					aliases TEXT[],
					UNIQUE (league_id, abbr)
				);
			`); err != nil {
				return fmt.Errorf("failed to create league/team tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS gamesets (
					id BIGSERIAL PRIMARY KEY,
					league_id BIGINT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					season SMALLINT NOT NULL,
					sequence SMALLINT NOT NULL CHECK (sequence > 0),
					opens TIMESTAMPTZ NOT NULL,
					closes TIMESTAMPTZ NOT NULL,
					points SMALLINT NOT NULL DEFAULT 0,
					UNIQUE (league_id, season, sequence)
				);
				CREATE INDEX IF NOT EXISTS idx_gamesets_window ON gamesets(league_id, opens, closes);

				CREATE TABLE IF NOT EXISTS gameset_byes (
					gameset_id BIGINT NOT NULL REFERENCES gamesets(id) ON DELETE CASCADE,
					team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					PRIMARY KEY (gameset_id, team_id)
				);

				CREATE TABLE IF NOT EXISTS games (
					id BIGSERIAL PRIMARY KEY,
					gameset_id BIGINT NOT NULL REFERENCES gamesets(id) ON DELETE CASCADE,
					home_id BIGINT NOT NULL REFERENCES teams(id),
					away_id BIGINT NOT NULL REFERENCES teams(id),
					start_time TIMESTAMPTZ NOT NULL,
					home_score SMALLINT,
					away_score SMALLINT,
					status CHAR(1) NOT NULL DEFAULT 'U' CHECK (status IN ('U', 'T', 'H', 'A', 'X')),
					location VARCHAR(60) NOT NULL DEFAULT '',
					UNIQUE (gameset_id, home_id, away_id),
					CHECK (home_id <> away_id)
				);
				CREATE INDEX IF NOT EXISTS idx_games_gameset_start ON games(gameset_id, start_time);
			`); err != nil {
				return fmt.Errorf("failed to create gameset/game tables: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping league tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS games;
			DROP TABLE IF EXISTS gameset_byes;
			DROP TABLE IF EXISTS gamesets;
			DROP TABLE IF EXISTS teams;
			DROP TABLE IF EXISTS divisions;
			DROP TABLE IF EXISTS conferences;
			DROP TABLE IF EXISTS leagues;
		`)
		return err
	})
}
