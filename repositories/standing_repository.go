package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/fixture-engine/models"
)

func (s *postgresStore) ListStandings(ctx context.Context, stageID int64) ([]models.Standing, error) {
	query := `
		SELECT id, stage_id, group_id, group_index, team_id, played, won, drawn, lost,
		       goals_for, goals_against, points, rank, updated_at
		FROM standings
		WHERE stage_id = $1
		ORDER BY group_index ASC NULLS FIRST, rank ASC`

	rows, err := s.exec.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	standings := make([]models.Standing, 0)
	for rows.Next() {
		var st models.Standing
		var groupID, groupIndex sql.NullInt64
		if err := rows.Scan(
			&st.ID, &st.StageID, &groupID, &groupIndex, &st.TeamID, &st.Played, &st.Won, &st.Drawn, &st.Lost,
			&st.GoalsFor, &st.GoalsAgainst, &st.Points, &st.Rank, &st.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", err)
		}
		st.GroupID = int64Ptr(groupID)
		st.GroupIndex = intPtr(groupIndex)
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

func (s *postgresStore) ReplaceStandings(ctx context.Context, stageID int64, groupIndex *int, rows []models.Standing) error {
	var err error
	if groupIndex == nil {
		_, err = s.exec.ExecContext(ctx, `DELETE FROM standings WHERE stage_id = $1 AND group_index IS NULL`, stageID)
	} else {
		_, err = s.exec.ExecContext(ctx, `DELETE FROM standings WHERE stage_id = $1 AND group_index = $2`, stageID, *groupIndex)
	}
	if err != nil {
		return fmt.Errorf("failed to clear standings for stage %d: %w", stageID, err)
	}

	query := `
		INSERT INTO standings
			(stage_id, group_id, group_index, team_id, played, won, drawn, lost, goals_for, goals_against, points, rank, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, updated_at`
	for i := range rows {
		st := &rows[i]
		err := s.exec.QueryRowContext(ctx, query,
			stageID, nullInt64(st.GroupID), nullInt(groupIndex), st.TeamID, st.Played, st.Won, st.Drawn, st.Lost,
			st.GoalsFor, st.GoalsAgainst, st.Points, st.Rank,
		).Scan(&st.ID, &st.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert standing for team %d: %w", st.TeamID, mapPQError(err))
		}
	}
	return nil
}
