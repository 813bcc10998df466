package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/fixture-engine/models"
)

// Pairing is one round robin fixture expressed as positions in the entrant list.
type Pairing struct {
	Matchday int
	Ordinal  int // 1-based position of the pairing within its matchday
	Home     int
	Away     int
}

// RoundRobinPairings schedules n entrants with the circle method: the first
// position stays fixed and the rest rotate. For odd n a bye position is added
// and pairings against it are skipped. Every repeat after the first replays the
// base schedule, with home and away flipped on even repeats.
func RoundRobinPairings(n, repeats int) []Pairing {
	if n < 2 {
		return nil
	}
	if repeats < 1 {
		repeats = 1
	}
	m := n + n%2
	rounds := m - 1

	pos := make([]int, m)
	for i := range pos {
		pos[i] = i
	}

	base := make([]Pairing, 0, rounds*(m/2))
	for r := 0; r < rounds; r++ {
		ordinal := 0
		for i := 0; i < m/2; i++ {
			home, away := pos[i], pos[m-1-i]
			if home >= n || away >= n {
				continue
			}
			// фиксированная позиция чередует дом/выезд
			if i == 0 && r%2 == 1 {
				home, away = away, home
			}
			ordinal++
			base = append(base, Pairing{Matchday: r + 1, Ordinal: ordinal, Home: home, Away: away})
		}
		last := pos[m-1]
		copy(pos[2:], pos[1:m-1])
		pos[1] = last
	}

	out := make([]Pairing, 0, len(base)*repeats)
	for rep := 1; rep <= repeats; rep++ {
		offset := (rep - 1) * rounds
		for _, p := range base {
			q := Pairing{Matchday: p.Matchday + offset, Ordinal: p.Ordinal, Home: p.Home, Away: p.Away}
			if rep%2 == 0 {
				q.Home, q.Away = q.Away, q.Home
			}
			out = append(out, q)
		}
	}
	return out
}

// RoundsPerRepeat is the number of matchdays one full round robin takes.
func RoundsPerRepeat(n int) int {
	if n < 2 {
		return 0
	}
	return n + n%2 - 1
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates matchday-scheduled matches for a league or a group.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entrants := params.Entrants
	if len(entrants) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: %w (found %d)", ErrNotEnoughEntrants, len(entrants))
	}

	if params.Shuffle && params.Rand != nil {
		entrants = append([]*int64(nil), entrants...)
		params.Rand.Shuffle(len(entrants), func(i, j int) {
			entrants[i], entrants[j] = entrants[j], entrants[i]
		})
	}

	pairings := RoundRobinPairings(len(entrants), params.Rounds)
	matches := make([]*models.Match, 0, len(pairings))
	for _, p := range pairings {
		if params.MatchdayCap > 0 && p.Matchday > params.MatchdayCap {
			continue
		}
		matches = append(matches, &models.Match{
			Matchday: intPtr(p.Matchday),
			Ordinal:  p.Ordinal,
			TeamA:    entrants[p.Home],
			TeamB:    entrants[p.Away],
			Status:   models.StatusScheduled,
		})
	}
	return matches, nil
}
