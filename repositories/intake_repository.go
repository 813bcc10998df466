package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/fixture-engine/models"
)

const intakeColumns = `id, source_stage_id, round, bracket_pos, outcome, target_stage_id, group_index, slot_index`

func (s *postgresStore) listIntake(ctx context.Context, query string, args ...interface{}) ([]models.IntakeMapping, error) {
	rows, err := s.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query intake mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]models.IntakeMapping, 0)
	for rows.Next() {
		var m models.IntakeMapping
		if err := rows.Scan(&m.ID, &m.SourceStageID, &m.Round, &m.BracketPos, &m.Outcome,
			&m.TargetStageID, &m.GroupIndex, &m.SlotIndex); err != nil {
			return nil, fmt.Errorf("failed to scan intake mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (s *postgresStore) ListIntakeBySource(ctx context.Context, sourceStageID int64, coord models.Coord) ([]models.IntakeMapping, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake_mappings
		WHERE source_stage_id = $1 AND round = $2 AND bracket_pos = $3
		ORDER BY id ASC`
	return s.listIntake(ctx, query, sourceStageID, coord.Round, coord.BracketPos)
}

func (s *postgresStore) ListIntakeByTarget(ctx context.Context, targetStageID int64) ([]models.IntakeMapping, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake_mappings
		WHERE target_stage_id = $1
		ORDER BY group_index ASC, slot_index ASC, id ASC`
	return s.listIntake(ctx, query, targetStageID)
}

func (s *postgresStore) InsertIntake(ctx context.Context, m *models.IntakeMapping) error {
	query := `
		INSERT INTO intake_mappings (source_stage_id, round, bracket_pos, outcome, target_stage_id, group_index, slot_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := s.exec.QueryRowContext(ctx, query,
		m.SourceStageID, m.Round, m.BracketPos, m.Outcome, m.TargetStageID, m.GroupIndex, m.SlotIndex,
	).Scan(&m.ID)
	return mapPQError(err)
}

func (s *postgresStore) DeleteIntake(ctx context.Context, id int64) error {
	result, err := s.exec.ExecContext(ctx, `DELETE FROM intake_mappings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrIntakeNotFound)
}

func (s *postgresStore) ListSlots(ctx context.Context, stageID int64) ([]models.SlotAssignment, error) {
	query := `
		SELECT stage_id, group_index, slot_index, team_id
		FROM intake_slots
		WHERE stage_id = $1
		ORDER BY group_index ASC, slot_index ASC`
	rows, err := s.exec.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query intake slots for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	slots := make([]models.SlotAssignment, 0)
	for rows.Next() {
		var a models.SlotAssignment
		if err := rows.Scan(&a.StageID, &a.GroupIndex, &a.SlotIndex, &a.TeamID); err != nil {
			return nil, fmt.Errorf("failed to scan intake slot: %w", err)
		}
		slots = append(slots, a)
	}
	return slots, rows.Err()
}

func (s *postgresStore) UpsertSlot(ctx context.Context, slot models.SlotAssignment) error {
	query := `
		INSERT INTO intake_slots (stage_id, group_index, slot_index, team_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (stage_id, group_index, slot_index) DO UPDATE SET team_id = EXCLUDED.team_id`
	_, err := s.exec.ExecContext(ctx, query, slot.StageID, slot.GroupIndex, slot.SlotIndex, slot.TeamID)
	return mapPQError(err)
}
