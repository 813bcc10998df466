package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/fixture-engine/models"
)

// memoryData is shared by a MemoryStore and all of its transaction views.
type memoryData struct {
	mu sync.RWMutex

	tournaments  map[int64]*models.Tournament
	stages       map[int64]models.Stage
	groups       map[int64][]models.Group
	participants map[int64][]models.Participant
	matches      map[int64]*models.Match
	keys         map[string]int64
	standings    map[int64][]models.Standing
	intake       map[int64]models.IntakeMapping
	slots        map[models.SlotKey]int64

	nextMatchID    int64
	nextIntakeID   int64
	nextStandingID int64

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// MemoryStore is an in-process Store used by tests and the fixturegen CLI.
// Writes are applied immediately: a failing InStageTx callback does not roll
// back what it already wrote.
type MemoryStore struct {
	data *memoryData
	held map[int64]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memoryData{
		tournaments:  make(map[int64]*models.Tournament),
		stages:       make(map[int64]models.Stage),
		groups:       make(map[int64][]models.Group),
		participants: make(map[int64][]models.Participant),
		matches:      make(map[int64]*models.Match),
		keys:         make(map[string]int64),
		standings:    make(map[int64][]models.Standing),
		intake:       make(map[int64]models.IntakeMapping),
		slots:        make(map[models.SlotKey]int64),
		locks:        make(map[int64]*sync.Mutex),
	}}
}

// AddTournament, AddStage, AddGroup and AddParticipant seed the store.

func (s *MemoryStore) AddTournament(t models.Tournament) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.tournaments[t.ID] = &t
}

func (s *MemoryStore) AddStage(st models.Stage) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	for i := range st.Config.Intake {
		st.Config.Intake[i].TargetStageID = st.ID
	}
	s.data.stages[st.ID] = st
}

func (s *MemoryStore) AddGroup(g models.Group) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	gs := append(s.data.groups[g.StageID], g)
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].Index < gs[j].Index })
	s.data.groups[g.StageID] = gs
}

func (s *MemoryStore) AddParticipant(p models.Participant) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if p.GroupIndex != nil && p.GroupID == nil {
		for _, g := range s.data.groups[p.StageID] {
			if g.Index == *p.GroupIndex {
				id := g.ID
				p.GroupID = &id
			}
		}
	}
	s.data.participants[p.StageID] = append(s.data.participants[p.StageID], p)
}

func (s *MemoryStore) stageLock(stageID int64) *sync.Mutex {
	s.data.locksMu.Lock()
	defer s.data.locksMu.Unlock()
	l, ok := s.data.locks[stageID]
	if !ok {
		l = &sync.Mutex{}
		s.data.locks[stageID] = l
	}
	return l
}

func (s *MemoryStore) InStageTx(ctx context.Context, stageID int64, fn func(ctx context.Context, tx Store) error) error {
	if s.held[stageID] {
		return fn(ctx, s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l := s.stageLock(stageID)
	l.Lock()
	defer l.Unlock()

	held := make(map[int64]bool, len(s.held)+1)
	for id := range s.held {
		held[id] = true
	}
	held[stageID] = true
	return fn(ctx, &MemoryStore{data: s.data, held: held})
}

func (s *MemoryStore) GetTournament(_ context.Context, id int64) (*models.Tournament, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	t, ok := s.data.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) SetTournamentCompleted(_ context.Context, id int64, completed bool) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	t, ok := s.data.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	t.Completed = completed
	if !completed {
		t.CompletedAt = nil
	} else if t.CompletedAt == nil {
		now := time.Now()
		t.CompletedAt = &now
	}
	return nil
}

func (s *MemoryStore) ListStages(_ context.Context, tournamentID int64) ([]models.Stage, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	stages := make([]models.Stage, 0)
	for _, st := range s.data.stages {
		if st.TournamentID == tournamentID {
			stages = append(stages, st)
		}
	}
	sort.Slice(stages, func(i, j int) bool {
		if stages[i].Ordinal != stages[j].Ordinal {
			return stages[i].Ordinal < stages[j].Ordinal
		}
		return stages[i].ID < stages[j].ID
	})
	return stages, nil
}

func (s *MemoryStore) GetStage(_ context.Context, id int64) (*models.Stage, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	st, ok := s.data.stages[id]
	if !ok {
		return nil, ErrStageNotFound
	}
	return &st, nil
}

func (s *MemoryStore) ListGroups(_ context.Context, stageID int64) ([]models.Group, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	return append([]models.Group(nil), s.data.groups[stageID]...), nil
}

func (s *MemoryStore) ListParticipants(_ context.Context, stageID int64, groupIndex *int) ([]models.Participant, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := make([]models.Participant, 0)
	for _, p := range s.data.participants[stageID] {
		if groupIndex != nil && !p.InGroup(groupIndex) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func cloneMatch(m *models.Match) *models.Match {
	cp := *m
	if m.HomeSource != nil {
		src := *m.HomeSource
		cp.HomeSource = &src
	}
	if m.AwaySource != nil {
		src := *m.AwaySource
		cp.AwaySource = &src
	}
	return &cp
}

func (s *MemoryStore) GetMatch(_ context.Context, id int64) (*models.Match, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	m, ok := s.data.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (s *MemoryStore) ListMatches(_ context.Context, stageID int64, status *models.MatchStatus) ([]*models.Match, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := make([]*models.Match, 0)
	for _, m := range s.data.matches {
		if m.StageID != stageID || (status != nil && m.Status != *status) {
			continue
		}
		out = append(out, cloneMatch(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpsertMatches(_ context.Context, matches []*models.Match) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	for _, m := range matches {
		key := m.Key()
		if id, ok := s.data.keys[key]; ok {
			m.ID = id
			existing := s.data.matches[id]
			if existing.Finished() {
				continue
			}
			existing.GroupID = m.GroupID
			if m.TeamA != nil {
				existing.TeamA = m.TeamA
			}
			if m.TeamB != nil {
				existing.TeamB = m.TeamB
			}
			existing.HomeSource = m.HomeSource
			existing.AwaySource = m.AwaySource
			s.data.matches[id] = cloneMatch(existing)
			continue
		}
		s.data.nextMatchID++
		m.ID = s.data.nextMatchID
		s.data.keys[key] = m.ID
		s.data.matches[m.ID] = cloneMatch(m)
	}
	return nil
}

func (s *MemoryStore) UpdateMatch(_ context.Context, m *models.Match) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if _, ok := s.data.matches[m.ID]; !ok {
		return ErrMatchNotFound
	}
	s.data.matches[m.ID] = cloneMatch(m)
	return nil
}

func (s *MemoryStore) DeleteMatches(_ context.Context, ids []int64) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	for _, id := range ids {
		m, ok := s.data.matches[id]
		if !ok || m.Finished() {
			continue
		}
		delete(s.data.keys, m.Key())
		delete(s.data.matches, id)
	}
	return nil
}

func (s *MemoryStore) ListStandings(_ context.Context, stageID int64) ([]models.Standing, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	return append([]models.Standing(nil), s.data.standings[stageID]...), nil
}

func (s *MemoryStore) ReplaceStandings(_ context.Context, stageID int64, groupIndex *int, rows []models.Standing) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	kept := make([]models.Standing, 0, len(s.data.standings[stageID])+len(rows))
	for _, st := range s.data.standings[stageID] {
		if !sameGroup(st.GroupIndex, groupIndex) {
			kept = append(kept, st)
		}
	}
	now := time.Now()
	for i := range rows {
		s.data.nextStandingID++
		rows[i].ID = s.data.nextStandingID
		rows[i].StageID = stageID
		rows[i].UpdatedAt = now
		kept = append(kept, rows[i])
	}
	s.data.standings[stageID] = kept
	return nil
}

func sameGroup(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *MemoryStore) ListIntakeBySource(_ context.Context, sourceStageID int64, coord models.Coord) ([]models.IntakeMapping, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := make([]models.IntakeMapping, 0)
	for _, m := range s.data.intake {
		if m.SourceStageID == sourceStageID && m.SourceCoord() == coord {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListIntakeByTarget(_ context.Context, targetStageID int64) ([]models.IntakeMapping, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := make([]models.IntakeMapping, 0)
	for _, m := range s.data.intake {
		if m.TargetStageID == targetStageID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GroupIndex != out[j].GroupIndex {
			return out[i].GroupIndex < out[j].GroupIndex
		}
		if out[i].SlotIndex != out[j].SlotIndex {
			return out[i].SlotIndex < out[j].SlotIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) InsertIntake(_ context.Context, m *models.IntakeMapping) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if _, ok := s.data.stages[m.SourceStageID]; !ok {
		return ErrStageInvalid
	}
	if _, ok := s.data.stages[m.TargetStageID]; !ok {
		return ErrStageInvalid
	}
	s.data.nextIntakeID++
	m.ID = s.data.nextIntakeID
	s.data.intake[m.ID] = *m
	return nil
}

func (s *MemoryStore) DeleteIntake(_ context.Context, id int64) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if _, ok := s.data.intake[id]; !ok {
		return ErrIntakeNotFound
	}
	delete(s.data.intake, id)
	return nil
}

func (s *MemoryStore) ListSlots(_ context.Context, stageID int64) ([]models.SlotAssignment, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := make([]models.SlotAssignment, 0)
	for k, team := range s.data.slots {
		if k.StageID == stageID {
			out = append(out, models.SlotAssignment{StageID: k.StageID, GroupIndex: k.GroupIndex, SlotIndex: k.SlotIndex, TeamID: team})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GroupIndex != out[j].GroupIndex {
			return out[i].GroupIndex < out[j].GroupIndex
		}
		return out[i].SlotIndex < out[j].SlotIndex
	})
	return out, nil
}

func (s *MemoryStore) UpsertSlot(_ context.Context, slot models.SlotAssignment) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.slots[slot.Key()] = slot.TeamID
	return nil
}
