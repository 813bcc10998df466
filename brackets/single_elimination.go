package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/fixture-engine/models"
)

// SingleEliminationGenerator builds a seeded bracket for a field whose size is
// exactly a power of two.
type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entrants := params.Entrants
	n := len(entrants)
	if n < 2 {
		return nil, fmt.Errorf("SingleEliminationGenerator: %w (found %d)", ErrNotEnoughEntrants, n)
	}
	if !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("SingleEliminationGenerator: %w (found %d)", ErrNotPowerOfTwo, n)
	}

	order := SeedOrder(n)
	matches := make([]*models.Match, 0, n-1)
	for j := 0; j < n/2; j++ {
		matches = append(matches, &models.Match{
			Round:      intPtr(1),
			BracketPos: intPtr(j + 1),
			TeamA:      entrants[order[2*j]-1],
			TeamB:      entrants[order[2*j+1]-1],
			Status:     models.StatusScheduled,
		})
	}

	inRound := n / 2
	for r := 2; inRound > 1; r++ {
		inRound /= 2
		for j := 1; j <= inRound; j++ {
			matches = append(matches, &models.Match{
				Round:      intPtr(r),
				BracketPos: intPtr(j),
				HomeSource: winnerOf(r-1, 2*j-1),
				AwaySource: winnerOf(r-1, 2*j),
				Status:     models.StatusScheduled,
			})
		}
	}
	sortMatches(matches)
	return matches, nil
}

func sortMatches(matches []*models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		ci, _ := matches[i].Coord()
		cj, _ := matches[j].Coord()
		if ci.Round != cj.Round {
			return ci.Round < cj.Round
		}
		return ci.BracketPos < cj.BracketPos
	})
}
