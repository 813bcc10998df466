package brackets

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/Dosada05/fixture-engine/models"
)

var (
	ErrNotEnoughEntrants = errors.New("not enough entrants (minimum 2 required)")
	ErrNotPowerOfTwo     = errors.New("entrant count is not a power of two")
	ErrInvalidConfig     = errors.New("invalid stage configuration")
)

// GenerateBracketParams: входные данные генератора. Entrants упорядочены по
// посеву; nil означает участника, который станет известен позже.
type GenerateBracketParams struct {
	Entrants    []*int64
	Rounds      int // повторов круга, для кругового турнира
	MatchdayCap int
	Shuffle     bool
	Rand        *rand.Rand
}

// BracketGenerator produces match skeletons. Generators are pure: they never
// touch storage and may run concurrently.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}

// NewKnockoutGenerator picks the power-of-two generator for clean fields and
// the bye-aware generator otherwise.
func NewKnockoutGenerator(entrants int) BracketGenerator {
	if IsPowerOfTwo(entrants) {
		return NewSingleEliminationGenerator()
	}
	return NewByeBracketGenerator()
}

func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// SeedOrder returns the canonical bracket order of seeds for a bracket of the
// given power-of-two size, so that seed 1 and seed 2 can only meet in the final.
//
//	order(1)  = [1]
//	order(2k) = interleave(order(k), [2k+1-s for s in order(k)])
func SeedOrder(size int) []int {
	order := []int{1}
	for k := 1; k < size; k *= 2 {
		next := make([]int, 0, 2*k)
		for _, s := range order {
			next = append(next, s, 2*k+1-s)
		}
		order = next
	}
	return order
}

func intPtr(v int) *int {
	return &v
}

func winnerOf(round, pos int) *models.SourcePointer {
	return &models.SourcePointer{Round: round, BracketPos: pos, Outcome: models.OutcomeWinner}
}
