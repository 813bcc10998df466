package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/fixture-engine/models"
	"github.com/lib/pq"
)

const matchColumns = `
	id, tournament_id, stage_id, group_id, group_index, matchday, ordinal, round, bracket_pos,
	team_a, team_b, score_a, score_b, status, winner_id,
	home_src_match_id, home_src_round, home_src_pos, home_src_outcome,
	away_src_match_id, away_src_round, away_src_pos, away_src_outcome,
	scheduled_at`

// sourceColumns хранит SourcePointer в четырёх nullable-колонках.
type sourceColumns struct {
	matchID sql.NullInt64
	round   sql.NullInt64
	pos     sql.NullInt64
	outcome sql.NullString
}

func (c *sourceColumns) pointer() *models.SourcePointer {
	if !c.round.Valid || !c.pos.Valid || !c.outcome.Valid {
		return nil
	}
	return &models.SourcePointer{
		MatchID:    int64Ptr(c.matchID),
		Round:      int(c.round.Int64),
		BracketPos: int(c.pos.Int64),
		Outcome:    models.Outcome(c.outcome.String),
	}
}

func sourceArgs(p *models.SourcePointer) []interface{} {
	if p == nil {
		return []interface{}{nil, nil, nil, nil}
	}
	return []interface{}{nullInt64(p.MatchID), p.Round, p.BracketPos, string(p.Outcome)}
}

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var (
		m                             models.Match
		groupID, groupIndex, matchday sql.NullInt64
		round, pos                    sql.NullInt64
		teamA, teamB, scoreA, scoreB  sql.NullInt64
		winner                        sql.NullInt64
		home, away                    sourceColumns
		scheduledAt                   sql.NullTime
	)
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.StageID, &groupID, &groupIndex, &matchday, &m.Ordinal, &round, &pos,
		&teamA, &teamB, &scoreA, &scoreB, &m.Status, &winner,
		&home.matchID, &home.round, &home.pos, &home.outcome,
		&away.matchID, &away.round, &away.pos, &away.outcome,
		&scheduledAt,
	)
	if err != nil {
		return nil, err
	}
	m.GroupID = int64Ptr(groupID)
	m.GroupIndex = intPtr(groupIndex)
	m.Matchday = intPtr(matchday)
	m.Round = intPtr(round)
	m.BracketPos = intPtr(pos)
	m.TeamA = int64Ptr(teamA)
	m.TeamB = int64Ptr(teamB)
	m.ScoreA = intPtr(scoreA)
	m.ScoreB = intPtr(scoreB)
	m.WinnerID = int64Ptr(winner)
	m.HomeSource = home.pointer()
	m.AwaySource = away.pointer()
	if scheduledAt.Valid {
		t := scheduledAt.Time
		m.ScheduledAt = &t
	}
	return &m, nil
}

func (s *postgresStore) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(s.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return m, nil
}

func (s *postgresStore) ListMatches(ctx context.Context, stageID int64, status *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE stage_id = $1`)
	args := []interface{}{stageID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $2")
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY group_index ASC NULLS FIRST, round ASC NULLS FIRST, bracket_pos ASC NULLS FIRST, matchday ASC NULLS FIRST, ordinal ASC, id ASC")

	rows, err := s.exec.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row for stage %d: %w", stageID, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows for stage %d: %w", stageID, err)
	}
	return matches, nil
}

func (s *postgresStore) UpsertMatches(ctx context.Context, matches []*models.Match) error {
	query := `
		INSERT INTO matches
			(structural_key, tournament_id, stage_id, group_id, group_index, matchday, ordinal, round, bracket_pos,
			 team_a, team_b, status,
			 home_src_match_id, home_src_round, home_src_pos, home_src_outcome,
			 away_src_match_id, away_src_round, away_src_pos, away_src_outcome,
			 scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (structural_key) DO UPDATE SET
			group_id = EXCLUDED.group_id,
			team_a = COALESCE(EXCLUDED.team_a, matches.team_a),
			team_b = COALESCE(EXCLUDED.team_b, matches.team_b),
			home_src_match_id = EXCLUDED.home_src_match_id,
			home_src_round = EXCLUDED.home_src_round,
			home_src_pos = EXCLUDED.home_src_pos,
			home_src_outcome = EXCLUDED.home_src_outcome,
			away_src_match_id = EXCLUDED.away_src_match_id,
			away_src_round = EXCLUDED.away_src_round,
			away_src_pos = EXCLUDED.away_src_pos,
			away_src_outcome = EXCLUDED.away_src_outcome
		WHERE matches.status = 'scheduled'
		RETURNING id`

	for _, m := range matches {
		key := m.Key()
		args := []interface{}{
			key, m.TournamentID, m.StageID, nullInt64(m.GroupID), nullInt(m.GroupIndex), nullInt(m.Matchday), m.Ordinal,
			nullInt(m.Round), nullInt(m.BracketPos), nullInt64(m.TeamA), nullInt64(m.TeamB), m.Status,
		}
		args = append(args, sourceArgs(m.HomeSource)...)
		args = append(args, sourceArgs(m.AwaySource)...)
		args = append(args, m.ScheduledAt)

		err := s.exec.QueryRowContext(ctx, query, args...).Scan(&m.ID)
		if errors.Is(err, sql.ErrNoRows) {
			// строка уже завершена, ON CONFLICT ... WHERE её не тронул
			err = s.exec.QueryRowContext(ctx, `SELECT id FROM matches WHERE structural_key = $1`, key).Scan(&m.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert match %s: %w", key, mapPQError(err))
		}
	}
	return nil
}

func (s *postgresStore) UpdateMatch(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches SET
			team_a = $1, team_b = $2, score_a = $3, score_b = $4, status = $5, winner_id = $6,
			home_src_match_id = $7, home_src_round = $8, home_src_pos = $9, home_src_outcome = $10,
			away_src_match_id = $11, away_src_round = $12, away_src_pos = $13, away_src_outcome = $14,
			scheduled_at = $15
		WHERE id = $16`

	args := []interface{}{
		nullInt64(m.TeamA), nullInt64(m.TeamB), nullInt(m.ScoreA), nullInt(m.ScoreB), m.Status, nullInt64(m.WinnerID),
	}
	args = append(args, sourceArgs(m.HomeSource)...)
	args = append(args, sourceArgs(m.AwaySource)...)
	args = append(args, m.ScheduledAt, m.ID)

	result, err := s.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", m.ID, mapPQError(err))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (s *postgresStore) DeleteMatches(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.exec.ExecContext(ctx, `DELETE FROM matches WHERE id = ANY($1) AND status = 'scheduled'`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return nil
}
