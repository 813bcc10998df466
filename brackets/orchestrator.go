package brackets

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/Dosada05/fixture-engine/models"
	"golang.org/x/sync/errgroup"
)

// StagePlan is the read-only input for one stage: its configuration, groups,
// current team/seed/group assignments and the intake mappings targeting it.
type StagePlan struct {
	Stage        models.Stage
	Groups       []models.Group
	Participants []models.Participant
	Intake       []models.IntakeMapping
	Standings    []models.Standing // live tables, used when the stage feeds a knockout
}

type TournamentPlan struct {
	TournamentID int64
	Stages       []StagePlan
	// Seed makes shuffled schedules reproducible; 0 picks a time based seed.
	Seed uint64
}

// StageResult is the generated match set for one stage. Err is set when the
// stage configuration is unusable; other stages are unaffected.
type StageResult struct {
	StageID  int64
	Matches  []*models.Match
	Warnings []Warning
	Err      error
}

// GenerateFixtures runs the right generator for every stage in parallel and
// returns one result per stage in stage order. Matches are de-duplicated by
// structural key across the whole tournament.
func GenerateFixtures(ctx context.Context, plan TournamentPlan) ([]StageResult, error) {
	stages := append([]StagePlan(nil), plan.Stages...)
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Stage.Ordinal < stages[j].Stage.Ordinal
	})

	seed := plan.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	byID := make(map[int64]*StagePlan, len(stages))
	for i := range stages {
		byID[stages[i].Stage.ID] = &stages[i]
	}

	results := make([]StageResult, len(stages))
	g, gCtx := errgroup.WithContext(ctx)
	for i := range stages {
		i := i
		g.Go(func() error {
			sp := &stages[i]
			rng := rand.New(rand.NewPCG(seed, uint64(sp.Stage.ID)))
			matches, warnings, err := generateStage(gCtx, sp, byID, rng)
			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return err
			}
			for _, m := range matches {
				m.TournamentID = plan.TournamentID
				m.StageID = sp.Stage.ID
				if m.Status == "" {
					m.Status = models.StatusScheduled
				}
			}
			results[i] = StageResult{StageID: sp.Stage.ID, Matches: matches, Warnings: warnings, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i := range results {
		kept := results[i].Matches[:0]
		for _, m := range results[i].Matches {
			key := m.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, m)
		}
		results[i].Matches = kept
	}
	return results, nil
}

func generateStage(ctx context.Context, sp *StagePlan, byID map[int64]*StagePlan, rng *rand.Rand) ([]*models.Match, []Warning, error) {
	switch sp.Stage.Kind {
	case models.StageLeague:
		return generateLeague(ctx, sp, rng)
	case models.StageGroups:
		return generateGroups(ctx, sp, rng)
	case models.StageKnockout:
		return generateKnockout(ctx, sp, byID)
	}
	return nil, nil, fmt.Errorf("%w: unknown stage kind %q", ErrInvalidConfig, sp.Stage.Kind)
}

func generateLeague(ctx context.Context, sp *StagePlan, rng *rand.Rand) ([]*models.Match, []Warning, error) {
	cfg := sp.Stage.Config
	matches, err := NewRoundRobinGenerator().GenerateBracket(ctx, GenerateBracketParams{
		Entrants:    SeedOrdered(sp.Participants),
		Rounds:      cfg.Rounds(),
		MatchdayCap: cfg.MatchdayCap,
		Shuffle:     cfg.Shuffle,
		Rand:        rng,
	})
	return matches, nil, err
}

func generateGroups(ctx context.Context, sp *StagePlan, rng *rand.Rand) ([]*models.Match, []Warning, error) {
	cfg := sp.Stage.Config
	if len(sp.Groups) == 0 {
		return nil, nil, fmt.Errorf("%w: groups stage %d has no groups", ErrInvalidConfig, sp.Stage.ID)
	}
	groupIDs := make(map[int]int64, len(sp.Groups))
	for _, grp := range sp.Groups {
		groupIDs[grp.Index] = grp.ID
	}

	byGroup := make(map[int][]models.Participant)
	for _, p := range sp.Participants {
		if p.GroupIndex == nil {
			return nil, nil, fmt.Errorf("%w: team %d has no group in groups stage %d", ErrInvalidConfig, p.TeamID, sp.Stage.ID)
		}
		if _, ok := groupIDs[*p.GroupIndex]; !ok {
			return nil, nil, fmt.Errorf("%w: team %d assigned to group index %d which does not exist", ErrInvalidConfig, p.TeamID, *p.GroupIndex)
		}
		byGroup[*p.GroupIndex] = append(byGroup[*p.GroupIndex], p)
	}

	slots := GroupSlots(sp.Intake, sp.Stage.ID)
	for g := range slots {
		if _, ok := groupIDs[g]; !ok {
			return nil, nil, fmt.Errorf("%w: intake targets group index %d which does not exist", ErrInvalidConfig, g)
		}
	}

	var matches []*models.Match
	var warnings []Warning
	for _, grp := range sp.Groups {
		var groupMatches []*models.Match
		if s, ok := slots[grp.Index]; ok {
			groupMatches = Skeleton(len(s), cfg.Rounds())
		} else {
			entrants := SeedOrdered(byGroup[grp.Index])
			if len(entrants) < 2 {
				warnings = append(warnings, Warning{
					Code:    WarnSmallGroup,
					Message: fmt.Sprintf("group %s has %d teams, no matches generated", grp.Label(), len(entrants)),
				})
				continue
			}
			var err error
			groupMatches, err = NewRoundRobinGenerator().GenerateBracket(ctx, GenerateBracketParams{
				Entrants:    entrants,
				Rounds:      cfg.Rounds(),
				MatchdayCap: cfg.MatchdayCap,
				Shuffle:     cfg.Shuffle,
				Rand:        rng,
			})
			if err != nil {
				return nil, warnings, fmt.Errorf("group %s: %w", grp.Label(), err)
			}
		}
		for _, m := range groupMatches {
			m.GroupIndex = intPtr(grp.Index)
			if grp.ID != 0 {
				id := grp.ID
				m.GroupID = &id
			}
		}
		matches = append(matches, groupMatches...)
	}
	return matches, warnings, nil
}

func generateKnockout(ctx context.Context, sp *StagePlan, byID map[int64]*StagePlan) ([]*models.Match, []Warning, error) {
	cfg := sp.Stage.Config
	if cfg.SourceStageID != nil {
		src, ok := byID[*cfg.SourceStageID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: knockout source stage %d not found", ErrInvalidConfig, *cfg.SourceStageID)
		}
		if src.Stage.Ordinal >= sp.Stage.Ordinal {
			return nil, nil, fmt.Errorf("%w: knockout source stage %d is not earlier than stage %d", ErrInvalidConfig, src.Stage.ID, sp.Stage.ID)
		}
		if src.Stage.Kind == models.StageKnockout {
			return nil, nil, fmt.Errorf("%w: knockout stage %d cannot be seeded from another knockout", ErrInvalidConfig, sp.Stage.ID)
		}
		matches, err := SeedKnockout(ctx, cfg, PreviewTable(src.Stage, src.Groups, src.Participants, src.Standings))
		return matches, nil, err
	}

	entrants := SeedOrdered(sp.Participants)
	if len(entrants) < 2 && cfg.BracketSize >= 2 {
		// сетка без участников: слоты заполнит редактор
		entrants = make([]*int64, cfg.BracketSize)
	}
	matches, err := NewKnockoutGenerator(len(entrants)).GenerateBracket(ctx, GenerateBracketParams{Entrants: entrants})
	return matches, nil, err
}

// PreviewTable builds the source table for seeding: stored standings where a
// group has them, otherwise the seed-ordered baseline of its participants.
func PreviewTable(stage models.Stage, groups []models.Group, participants []models.Participant, standings []models.Standing) SourceTable {
	src := SourceTable{Kind: stage.Kind}
	if stage.Kind == models.StageLeague {
		rows := filterStandings(standings, nil)
		if len(rows) == 0 {
			rows = BaselineStandings(stage.ID, nil, participants)
		}
		src.Groups = [][]models.Standing{rows}
		return src
	}

	ordered := append([]models.Group(nil), groups...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	for _, grp := range ordered {
		idx := grp.Index
		rows := filterStandings(standings, &idx)
		if len(rows) == 0 {
			var members []models.Participant
			for _, p := range participants {
				if p.InGroup(&idx) {
					members = append(members, p)
				}
			}
			rows = BaselineStandings(stage.ID, &idx, members)
		}
		src.Groups = append(src.Groups, rows)
	}
	return src
}

func filterStandings(standings []models.Standing, groupIndex *int) []models.Standing {
	var rows []models.Standing
	for _, s := range standings {
		switch {
		case groupIndex == nil && s.GroupIndex == nil,
			groupIndex != nil && s.GroupIndex != nil && *s.GroupIndex == *groupIndex:
			rows = append(rows, s)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	return rows
}
