package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/fixture-engine/models"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrIntakeNotFound     = errors.New("intake mapping not found")
	ErrMatchKeyConflict   = errors.New("match structural key conflict")
	ErrSlotConflict       = errors.New("intake slot conflict")
	ErrStageInvalid       = errors.New("stage reference invalid")
)

type TournamentRepository interface {
	GetTournament(ctx context.Context, id int64) (*models.Tournament, error)
	SetTournamentCompleted(ctx context.Context, id int64, completed bool) error
}

type StageRepository interface {
	// ListStages returns the stages of a tournament ordered by ordinal.
	ListStages(ctx context.Context, tournamentID int64) ([]models.Stage, error)
	GetStage(ctx context.Context, id int64) (*models.Stage, error)
	// ListGroups returns the groups of a stage ordered by display order.
	ListGroups(ctx context.Context, stageID int64) ([]models.Group, error)
	// ListParticipants lists a stage's participants; groupIndex nil means all of them.
	ListParticipants(ctx context.Context, stageID int64, groupIndex *int) ([]models.Participant, error)
}

type MatchRepository interface {
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	ListMatches(ctx context.Context, stageID int64, status *models.MatchStatus) ([]*models.Match, error)
	// UpsertMatches inserts or updates matches by structural key and sets their
	// IDs. Finished rows are never modified; a nil team never clears a team
	// already stored in a scheduled row.
	UpsertMatches(ctx context.Context, matches []*models.Match) error
	UpdateMatch(ctx context.Context, match *models.Match) error
	DeleteMatches(ctx context.Context, ids []int64) error
}

type StandingRepository interface {
	ListStandings(ctx context.Context, stageID int64) ([]models.Standing, error)
	// ReplaceStandings deletes and reinserts the table of one stage/group.
	ReplaceStandings(ctx context.Context, stageID int64, groupIndex *int, rows []models.Standing) error
}

type IntakeRepository interface {
	ListIntakeBySource(ctx context.Context, sourceStageID int64, coord models.Coord) ([]models.IntakeMapping, error)
	ListIntakeByTarget(ctx context.Context, targetStageID int64) ([]models.IntakeMapping, error)
	InsertIntake(ctx context.Context, mapping *models.IntakeMapping) error
	DeleteIntake(ctx context.Context, id int64) error
	ListSlots(ctx context.Context, stageID int64) ([]models.SlotAssignment, error)
	// UpsertSlot is unique on (stage, group, slot).
	UpsertSlot(ctx context.Context, slot models.SlotAssignment) error
}

// Store is the persistence collaborator of the engine.
type Store interface {
	TournamentRepository
	StageRepository
	MatchRepository
	StandingRepository
	IntakeRepository

	// InStageTx runs fn inside one transaction that holds the stage's exclusive
	// lock. The Store passed to fn is bound to that transaction. Calls for the
	// same stage are serialized.
	InStageTx(ctx context.Context, stageID int64, fn func(ctx context.Context, tx Store) error) error
}

var (
	_ Store = (*postgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
