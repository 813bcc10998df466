package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/fixture-engine/models"
)

func (s *postgresStore) GetTournament(ctx context.Context, id int64) (*models.Tournament, error) {
	query := `SELECT id, name, completed, completed_at FROM tournaments WHERE id = $1`
	t := &models.Tournament{}
	err := s.exec.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Completed, &t.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *postgresStore) SetTournamentCompleted(ctx context.Context, id int64, completed bool) error {
	query := `
		UPDATE tournaments
		SET completed = $1,
		    completed_at = CASE WHEN $1 THEN COALESCE(completed_at, NOW()) ELSE NULL END
		WHERE id = $2`
	result, err := s.exec.ExecContext(ctx, query, completed, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
