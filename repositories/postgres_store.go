package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type postgresStore struct {
	db   *sql.DB
	exec SQLExecutor
	tx   *sql.Tx
}

// NewPostgresStore returns a Store backed by PostgreSQL through lib/pq.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db, exec: db}
}

func (s *postgresStore) lockStage(ctx context.Context, exec SQLExecutor, stageID int64) error {
	// pg_advisory_xact_lock освобождается при COMMIT/ROLLBACK
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, stageID); err != nil {
		return fmt.Errorf("failed to lock stage %d: %w", stageID, err)
	}
	return nil
}

func (s *postgresStore) InStageTx(ctx context.Context, stageID int64, fn func(ctx context.Context, tx Store) error) (txErr error) {
	if s.tx != nil {
		if err := s.lockStage(ctx, s.tx, stageID); err != nil {
			return err
		}
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "rollback failed", slog.Int64("stage_id", stageID), slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction for stage %d: %w", stageID, cErr)
		}
	}()

	if txErr = s.lockStage(ctx, tx, stageID); txErr != nil {
		return txErr
	}
	txErr = fn(ctx, &postgresStore{db: s.db, exec: tx, tx: tx})
	return txErr
}
