package brackets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/fixture-engine/models"
)

// node: слот сетки: либо команда, прошедшая напрямую (в том числе по bye),
// либо ссылка на матч предыдущего раунда.
type node struct {
	teamID *int64
	source *models.SourcePointer
	direct bool
}

// ByeBracketGenerator builds a seeded bracket for any field size. The bracket
// is padded to the next power of two; seeds beyond the field are byes, and a
// team drawn against a bye goes straight into round 2 without a round-1 match.
// The result always holds exactly N-1 matches.
type ByeBracketGenerator struct{}

func NewByeBracketGenerator() BracketGenerator {
	return &ByeBracketGenerator{}
}

func (g *ByeBracketGenerator) GetName() string {
	return "ByeBracket"
}

func (g *ByeBracketGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entrants := params.Entrants
	n := len(entrants)
	if n < 2 {
		return nil, fmt.Errorf("ByeBracketGenerator: %w (found %d)", ErrNotEnoughEntrants, n)
	}

	size := NextPowerOfTwo(n)
	order := SeedOrder(size)
	slog.Debug("generating bye bracket", slog.Int("entrants", n), slog.Int("bracket_size", size), slog.Int("byes", size-n))

	matches := make([]*models.Match, 0, n-1)
	current := make([]node, 0, size/2)
	for j := 0; j < size/2; j++ {
		s1, s2 := order[2*j], order[2*j+1]
		bye1, bye2 := s1 > n, s2 > n
		switch {
		case !bye1 && !bye2:
			pos := j + 1
			matches = append(matches, &models.Match{
				Round:      intPtr(1),
				BracketPos: intPtr(pos),
				TeamA:      entrants[s1-1],
				TeamB:      entrants[s2-1],
				Status:     models.StatusScheduled,
			})
			current = append(current, node{source: winnerOf(1, pos)})
		case bye2 && !bye1:
			current = append(current, node{teamID: entrants[s1-1], direct: true})
		case bye1 && !bye2:
			current = append(current, node{teamID: entrants[s2-1], direct: true})
		default:
			// canonical order never pairs two byes while n > size/2
			return nil, fmt.Errorf("ByeBracketGenerator: two byes met in round 1 slot %d", j+1)
		}
	}

	for r := 2; len(current) > 1; r++ {
		next := make([]node, 0, len(current)/2)
		for j := 0; j < len(current); j += 2 {
			pos := j/2 + 1
			m := &models.Match{
				Round:      intPtr(r),
				BracketPos: intPtr(pos),
				Status:     models.StatusScheduled,
			}
			home, away := current[j], current[j+1]
			if home.direct {
				m.TeamA = home.teamID
			} else {
				m.HomeSource = home.source
			}
			if away.direct {
				m.TeamB = away.teamID
			} else {
				m.AwaySource = away.source
			}
			matches = append(matches, m)
			next = append(next, node{source: winnerOf(r, pos)})
		}
		current = next
	}

	sortMatches(matches)
	return matches, nil
}

// ByeCount returns how many entrants skip round 1 in a field of n.
func ByeCount(n int) int {
	if n < 2 {
		return 0
	}
	return NextPowerOfTwo(n) - n
}
