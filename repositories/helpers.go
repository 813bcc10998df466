package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// mapPQError переводит ошибки ограничений PostgreSQL в ошибки репозитория.
func mapPQError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "matches_structural_key_key":
			return fmt.Errorf("%w: %s", ErrMatchKeyConflict, pqErr.Detail)
		case "intake_slots_stage_id_group_index_slot_index_key":
			return fmt.Errorf("%w: %s", ErrSlotConflict, pqErr.Detail)
		}
	case "23503": // foreign_key_violation
		switch pqErr.Constraint {
		case "matches_stage_id_fkey", "standings_stage_id_fkey", "intake_mappings_source_stage_id_fkey",
			"intake_mappings_target_stage_id_fkey", "intake_slots_stage_id_fkey":
			return fmt.Errorf("%w: %s", ErrStageInvalid, pqErr.Detail)
		case "matches_tournament_id_fkey":
			return fmt.Errorf("%w: %s", ErrTournamentNotFound, pqErr.Detail)
		}
	}
	return err
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
