package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Dosada05/fixture-engine/models"
)

func (s *postgresStore) ListParticipants(ctx context.Context, stageID int64, groupIndex *int) ([]models.Participant, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT sp.stage_id, sp.group_id, g.display_order, sp.team_id, sp.seed
		FROM stage_participants sp
		LEFT JOIN stage_groups g ON g.id = sp.group_id
		WHERE sp.stage_id = $1`)
	args := []interface{}{stageID}
	if groupIndex != nil {
		queryBuilder.WriteString(" AND g.display_order = $2")
		args = append(args, *groupIndex)
	}
	queryBuilder.WriteString(" ORDER BY g.display_order ASC NULLS FIRST, sp.seed ASC NULLS LAST, sp.team_id ASC")

	rows, err := s.exec.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		var groupID, groupOrder, seed sql.NullInt64
		if err := rows.Scan(&p.StageID, &groupID, &groupOrder, &p.TeamID, &seed); err != nil {
			return nil, err
		}
		p.GroupID = int64Ptr(groupID)
		p.GroupIndex = intPtr(groupOrder)
		p.Seed = intPtr(seed)
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
