package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/fixture-engine/models"
)

const stageColumns = `id, tournament_id, ordinal, kind, name, config`

func scanStage(row interface{ Scan(...interface{}) error }) (*models.Stage, error) {
	var st models.Stage
	var rawConfig []byte
	if err := row.Scan(&st.ID, &st.TournamentID, &st.Ordinal, &st.Kind, &st.Name, &rawConfig); err != nil {
		return nil, err
	}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &st.Config); err != nil {
			return nil, fmt.Errorf("stage %d has invalid config: %w", st.ID, err)
		}
	}
	for i := range st.Config.Intake {
		st.Config.Intake[i].TargetStageID = st.ID
	}
	return &st, nil
}

func (s *postgresStore) ListStages(ctx context.Context, tournamentID int64) ([]models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE tournament_id = $1 ORDER BY ordinal ASC, id ASC`
	rows, err := s.exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]models.Stage, 0)
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		stages = append(stages, *st)
	}
	return stages, rows.Err()
}

func (s *postgresStore) GetStage(ctx context.Context, id int64) (*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id = $1`
	st, err := scanStage(s.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return st, nil
}

func (s *postgresStore) ListGroups(ctx context.Context, stageID int64) ([]models.Group, error) {
	query := `
		SELECT id, stage_id, display_order, name
		FROM stage_groups
		WHERE stage_id = $1
		ORDER BY display_order ASC, id ASC`
	rows, err := s.exec.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.StageID, &g.Index, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
