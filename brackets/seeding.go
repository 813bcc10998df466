package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/fixture-engine/models"
)

// SourceTable is the ranked outcome of an upstream league or groups stage.
// Groups holds one table per group in group order; a league has exactly one.
type SourceTable struct {
	Kind   models.StageKind
	Groups [][]models.Standing
}

// Qualifiers returns how many teams per group (or in total for a league) the
// knockout stage takes from the source.
func Qualifiers(cfg models.StageConfig, src SourceTable) int {
	if src.Kind == models.StageLeague {
		switch {
		case cfg.BracketSize > 0:
			return cfg.BracketSize
		case cfg.AdvancersPerGroup > 0:
			return cfg.AdvancersPerGroup
		case len(src.Groups) == 1:
			return len(src.Groups[0])
		}
		return 0
	}
	if cfg.AdvancersPerGroup > 0 {
		return cfg.AdvancersPerGroup
	}
	return 2
}

// qualifierAt returns the team ranked rank (1-based) in the given group, or nil
// when the table is not that long yet (teams still unknown).
func (s SourceTable) qualifierAt(group, rank int) *int64 {
	if group >= len(s.Groups) || rank < 1 || rank > len(s.Groups[group]) {
		return nil
	}
	id := s.Groups[group][rank-1].TeamID
	return &id
}

// SeedKnockout builds a knockout bracket fed by an upstream stage.
//
// Two groups with two advancers each get an explicit semifinal layout; every
// other shape is flattened into seed tiers (all group winners, then all
// runners-up, ...) or straight league rank order and fed to the knockout
// generator.
func SeedKnockout(ctx context.Context, cfg models.StageConfig, src SourceTable) ([]*models.Match, error) {
	advancers := Qualifiers(cfg, src)
	if advancers < 1 {
		return nil, fmt.Errorf("%w: knockout takes no qualifiers from %s source", ErrInvalidConfig, src.Kind)
	}

	if src.Kind == models.StageGroups && len(src.Groups) == 2 && advancers == 2 {
		return SemifinalBracket(src, cfg.Cross()), nil
	}

	entrants := SeedTiers(src, advancers)
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: %d qualifiers", ErrNotEnoughEntrants, len(entrants))
	}
	return NewKnockoutGenerator(len(entrants)).GenerateBracket(ctx, GenerateBracketParams{Entrants: entrants})
}

// SeedTiers flattens qualifiers into seed order.
func SeedTiers(src SourceTable, advancers int) []*int64 {
	if src.Kind == models.StageLeague {
		entrants := make([]*int64, 0, advancers)
		for rank := 1; rank <= advancers; rank++ {
			entrants = append(entrants, src.qualifierAt(0, rank))
		}
		return entrants
	}
	entrants := make([]*int64, 0, advancers*len(src.Groups))
	for rank := 1; rank <= advancers; rank++ {
		for g := range src.Groups {
			entrants = append(entrants, src.qualifierAt(g, rank))
		}
	}
	return entrants
}

// SemifinalBracket lays out semifinals for two groups of two advancers:
// "A1-B2" gives A1 vs B2 and B1 vs A2, "A1-B1" gives A1 vs B1 and A2 vs B2.
// The final takes both semifinal winners.
func SemifinalBracket(src SourceTable, cross models.SemiCross) []*models.Match {
	a1, a2 := src.qualifierAt(0, 1), src.qualifierAt(0, 2)
	b1, b2 := src.qualifierAt(1, 1), src.qualifierAt(1, 2)

	sf1 := &models.Match{Round: intPtr(1), BracketPos: intPtr(1), Status: models.StatusScheduled}
	sf2 := &models.Match{Round: intPtr(1), BracketPos: intPtr(2), Status: models.StatusScheduled}
	if cross == models.CrossA1B1 {
		sf1.TeamA, sf1.TeamB = a1, b1
		sf2.TeamA, sf2.TeamB = a2, b2
	} else {
		sf1.TeamA, sf1.TeamB = a1, b2
		sf2.TeamA, sf2.TeamB = b1, a2
	}
	final := &models.Match{
		Round:      intPtr(2),
		BracketPos: intPtr(1),
		HomeSource: winnerOf(1, 1),
		AwaySource: winnerOf(1, 2),
		Status:     models.StatusScheduled,
	}
	return []*models.Match{sf1, sf2, final}
}

// SourceComplete reports whether every match of the source stage is finished.
func SourceComplete(matches []*models.Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.Finished() {
			return false
		}
	}
	return true
}
