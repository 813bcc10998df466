package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify the connection with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate создаёт таблицы движка, если их ещё нет.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range schema {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT        NOT NULL,
		completed    BOOLEAN     NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS stages (
		id            BIGSERIAL PRIMARY KEY,
		tournament_id BIGINT  NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
		ordinal       INTEGER NOT NULL,
		kind          TEXT    NOT NULL CHECK (kind IN ('league', 'groups', 'knockout')),
		name          TEXT    NOT NULL DEFAULT '',
		config        JSONB   NOT NULL DEFAULT '{}'::jsonb
	)`,
	`CREATE INDEX IF NOT EXISTS stages_tournament_idx ON stages (tournament_id, ordinal)`,
	`CREATE TABLE IF NOT EXISTS stage_groups (
		id            BIGSERIAL PRIMARY KEY,
		stage_id      BIGINT  NOT NULL REFERENCES stages (id) ON DELETE CASCADE,
		display_order INTEGER NOT NULL,
		name          TEXT    NOT NULL DEFAULT '',
		UNIQUE (stage_id, display_order)
	)`,
	`CREATE TABLE IF NOT EXISTS stage_participants (
		stage_id BIGINT NOT NULL REFERENCES stages (id) ON DELETE CASCADE,
		group_id BIGINT REFERENCES stage_groups (id) ON DELETE SET NULL,
		team_id  BIGINT NOT NULL,
		seed     INTEGER,
		PRIMARY KEY (stage_id, team_id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id                BIGSERIAL PRIMARY KEY,
		structural_key    TEXT    NOT NULL UNIQUE,
		tournament_id     BIGINT  NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
		stage_id          BIGINT  NOT NULL REFERENCES stages (id) ON DELETE CASCADE,
		group_id          BIGINT REFERENCES stage_groups (id) ON DELETE SET NULL,
		group_index       INTEGER,
		matchday          INTEGER,
		ordinal           INTEGER,
		round             INTEGER,
		bracket_pos       INTEGER,
		team_a            BIGINT,
		team_b            BIGINT,
		score_a           INTEGER,
		score_b           INTEGER,
		status            TEXT    NOT NULL DEFAULT 'scheduled' CHECK (status IN ('scheduled', 'finished')),
		winner_id         BIGINT,
		home_src_match_id BIGINT,
		home_src_round    INTEGER,
		home_src_pos      INTEGER,
		home_src_outcome  TEXT CHECK (home_src_outcome IN ('W', 'L')),
		away_src_match_id BIGINT,
		away_src_round    INTEGER,
		away_src_pos      INTEGER,
		away_src_outcome  TEXT CHECK (away_src_outcome IN ('W', 'L')),
		scheduled_at      TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS matches_stage_idx ON matches (stage_id, status)`,
	`CREATE TABLE IF NOT EXISTS standings (
		id            BIGSERIAL PRIMARY KEY,
		stage_id      BIGINT  NOT NULL REFERENCES stages (id) ON DELETE CASCADE,
		group_id      BIGINT REFERENCES stage_groups (id) ON DELETE SET NULL,
		group_index   INTEGER,
		team_id       BIGINT  NOT NULL,
		played        INTEGER NOT NULL DEFAULT 0,
		won           INTEGER NOT NULL DEFAULT 0,
		drawn         INTEGER NOT NULL DEFAULT 0,
		lost          INTEGER NOT NULL DEFAULT 0,
		goals_for     INTEGER NOT NULL DEFAULT 0,
		goals_against INTEGER NOT NULL DEFAULT 0,
		points        INTEGER NOT NULL DEFAULT 0,
		rank          INTEGER NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS standings_stage_idx ON standings (stage_id, group_index)`,
	`CREATE TABLE IF NOT EXISTS intake_mappings (
		id              BIGSERIAL PRIMARY KEY,
		source_stage_id BIGINT  NOT NULL REFERENCES stages (id) ON DELETE CASCADE,
		round           INTEGER NOT NULL,
		bracket_pos     INTEGER NOT NULL,
		outcome         TEXT    NOT NULL CHECK (outcome IN ('W', 'L')),
		target_stage_id BIGINT  NOT NULL REFERENCES stages (id) ON DELETE CASCADE,
		group_index     INTEGER NOT NULL,
		slot_index      INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS intake_mappings_source_idx ON intake_mappings (source_stage_id, round, bracket_pos)`,
	`CREATE TABLE IF NOT EXISTS intake_slots (
		stage_id    BIGINT  NOT NULL REFERENCES stages (id) ON DELETE CASCADE,
		group_index INTEGER NOT NULL,
		slot_index  INTEGER NOT NULL,
		team_id     BIGINT  NOT NULL,
		UNIQUE (stage_id, group_index, slot_index)
	)`,
}
