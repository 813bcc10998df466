package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/fixture-engine/models"
	"github.com/Dosada05/fixture-engine/notify"
	"github.com/Dosada05/fixture-engine/repositories"
	"github.com/Dosada05/fixture-engine/storage"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, event notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) count(t notify.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type engine struct {
	store    *repositories.MemoryStore
	events   *recordingNotifier
	uploader *storage.MemoryUploader
	fixtures FixtureService
	progress ProgressionService
}

func newEngine() *engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &engine{
		store:    repositories.NewMemoryStore(),
		events:   &recordingNotifier{},
		uploader: storage.NewMemoryUploader(),
	}
	e.fixtures = NewFixtureService(e.store, e.events, logger, 1)
	e.progress = NewProgressionService(e.store, e.events, storage.NewSnapshotArchiver(e.uploader), logger)
	return e
}

func seedOf(v int) *int     { return &v }
func id64(v int64) *int64 { return &v }

// addTeams adds teams to a stage (and group, when groupIndex is not nil) with seeds in argument order.
func (e *engine) addTeams(stageID int64, groupIndex *int, teams ...int64) {
	for i, team := range teams {
		e.store.AddParticipant(models.Participant{StageID: stageID, GroupIndex: groupIndex, TeamID: team, Seed: seedOf(i + 1)})
	}
}

func (e *engine) addGroups(stageID int64, n int) {
	for i := 0; i < n; i++ {
		e.store.AddGroup(models.Group{ID: stageID*100 + int64(i) + 1, StageID: stageID, Index: i, Name: models.GroupLabel(i)})
	}
}

func (e *engine) generate(t *testing.T, tournamentID int64) *GenerationReport {
	t.Helper()
	report, err := e.fixtures.GenerateTournament(context.Background(), tournamentID, false)
	if err != nil {
		t.Fatalf("GenerateTournament: %v", err)
	}
	return report
}

func (e *engine) matches(t *testing.T, stageID int64) []*models.Match {
	t.Helper()
	matches, err := e.fixtures.ListStageMatches(context.Background(), stageID)
	if err != nil {
		t.Fatalf("ListStageMatches(%d): %v", stageID, err)
	}
	return matches
}

func (e *engine) at(t *testing.T, stageID int64, round, pos int) *models.Match {
	t.Helper()
	for _, m := range e.matches(t, stageID) {
		if c, ok := m.Coord(); ok && c.Round == round && c.BracketPos == pos {
			return m
		}
	}
	t.Fatalf("stage %d has no match R%dP%d", stageID, round, pos)
	return nil
}

func (e *engine) finish(t *testing.T, m *models.Match, scoreA, scoreB int) *ProgressReport {
	t.Helper()
	report, err := e.progress.FinishMatch(context.Background(), m.ID, Result{ScoreA: scoreA, ScoreB: scoreB})
	if err != nil {
		t.Fatalf("FinishMatch(%s %d-%d): %v", m.Key(), scoreA, scoreB, err)
	}
	return report
}

// finishByLowerID lets the team with the lower id win every unfinished match of the stage.
func (e *engine) finishByLowerID(t *testing.T, stageID int64) *ProgressReport {
	t.Helper()
	var last *ProgressReport
	for _, m := range e.matches(t, stageID) {
		if m.Finished() {
			continue
		}
		if *m.TeamA < *m.TeamB {
			last = e.finish(t, m, 1, 0)
		} else {
			last = e.finish(t, m, 0, 1)
		}
	}
	return last
}

func teamOf(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
