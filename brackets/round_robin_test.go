package brackets

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
)

func teamIDs(ids ...int64) []*int64 {
	out := make([]*int64, len(ids))
	for i := range ids {
		id := ids[i]
		out[i] = &id
	}
	return out
}

func TestRoundRobinPairingsCoverEveryPairOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6, 7, 8, 11} {
		pairings := RoundRobinPairings(n, 1)
		if want := n * (n - 1) / 2; len(pairings) != want {
			t.Fatalf("n=%d: got %d pairings, want %d", n, len(pairings), want)
		}
		if got, want := maxMatchday(pairings), RoundsPerRepeat(n); got != want {
			t.Errorf("n=%d: got %d matchdays, want %d", n, got, want)
		}

		seen := make(map[[2]int]bool)
		busy := make(map[[2]int]bool) // (matchday, team)
		for _, p := range pairings {
			if p.Home == p.Away {
				t.Fatalf("n=%d: team %d plays itself", n, p.Home)
			}
			key := [2]int{min(p.Home, p.Away), max(p.Home, p.Away)}
			if seen[key] {
				t.Errorf("n=%d: pair %v scheduled twice", n, key)
			}
			seen[key] = true
			for _, team := range []int{p.Home, p.Away} {
				if busy[[2]int{p.Matchday, team}] {
					t.Errorf("n=%d: team %d plays twice on matchday %d", n, team, p.Matchday)
				}
				busy[[2]int{p.Matchday, team}] = true
			}
		}
	}
}

func maxMatchday(pairings []Pairing) int {
	m := 0
	for _, p := range pairings {
		m = max(m, p.Matchday)
	}
	return m
}

func TestRoundRobinPairingsOrdinalsAreContiguous(t *testing.T) {
	pairings := RoundRobinPairings(5, 1)
	next := make(map[int]int)
	for _, p := range pairings {
		next[p.Matchday]++
		if p.Ordinal != next[p.Matchday] {
			t.Fatalf("matchday %d: ordinal %d, want %d", p.Matchday, p.Ordinal, next[p.Matchday])
		}
	}
	for md, count := range next {
		if count != 2 {
			t.Errorf("matchday %d has %d matches, want 2 (one team rests)", md, count)
		}
	}
}

func TestRoundRobinPairingsSecondRepeatFlipsVenue(t *testing.T) {
	const n = 4
	pairings := RoundRobinPairings(n, 2)
	rounds := RoundsPerRepeat(n)
	if len(pairings) != 12 {
		t.Fatalf("got %d pairings, want 12", len(pairings))
	}
	first, second := pairings[:6], pairings[6:]
	for i := range first {
		a, b := first[i], second[i]
		if b.Matchday != a.Matchday+rounds {
			t.Errorf("pairing %d: matchday %d, want %d", i, b.Matchday, a.Matchday+rounds)
		}
		if a.Home != b.Away || a.Away != b.Home {
			t.Errorf("pairing %d: %d-%d not flipped in second repeat (%d-%d)", i, a.Home, a.Away, b.Home, b.Away)
		}
	}
}

func TestRoundRobinPairingsTooSmall(t *testing.T) {
	if got := RoundRobinPairings(1, 1); got != nil {
		t.Errorf("one entrant: got %v, want nil", got)
	}
	if got := RoundsPerRepeat(1); got != 0 {
		t.Errorf("RoundsPerRepeat(1) = %d, want 0", got)
	}
}

func TestRoundRobinGenerator(t *testing.T) {
	ctx := context.Background()
	gen := NewRoundRobinGenerator()

	matches, err := gen.GenerateBracket(ctx, GenerateBracketParams{Entrants: teamIDs(1, 2, 3, 4), Rounds: 1})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	if len(matches) != 6 {
		t.Fatalf("got %d matches, want 6", len(matches))
	}
	for _, m := range matches {
		if m.Matchday == nil || m.TeamA == nil || m.TeamB == nil {
			t.Fatalf("incomplete match %+v", m)
		}
		if m.Round != nil || m.BracketPos != nil {
			t.Errorf("round robin match carries a knockout coordinate: %+v", m)
		}
	}

	capped, err := gen.GenerateBracket(ctx, GenerateBracketParams{Entrants: teamIDs(1, 2, 3, 4), Rounds: 2, MatchdayCap: 4})
	if err != nil {
		t.Fatalf("GenerateBracket with cap: %v", err)
	}
	for _, m := range capped {
		if *m.Matchday > 4 {
			t.Errorf("match on matchday %d beyond cap", *m.Matchday)
		}
	}
	if len(capped) != 8 {
		t.Errorf("capped schedule has %d matches, want 8", len(capped))
	}

	_, err = gen.GenerateBracket(ctx, GenerateBracketParams{Entrants: teamIDs(1)})
	if !errors.Is(err, ErrNotEnoughEntrants) {
		t.Errorf("single entrant: got %v, want ErrNotEnoughEntrants", err)
	}
}

func TestRoundRobinGeneratorShuffleIsReproducible(t *testing.T) {
	ctx := context.Background()
	entrants := teamIDs(1, 2, 3, 4, 5, 6)
	run := func() []int64 {
		matches, err := NewRoundRobinGenerator().GenerateBracket(ctx, GenerateBracketParams{
			Entrants: entrants,
			Rounds:   1,
			Shuffle:  true,
			Rand:     rand.New(rand.NewPCG(42, 7)),
		})
		if err != nil {
			t.Fatalf("GenerateBracket: %v", err)
		}
		var out []int64
		for _, m := range matches {
			out = append(out, *m.TeamA, *m.TeamB)
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different schedules at %d: %d vs %d", i, a[i], b[i])
		}
	}
	if *entrants[0] != 1 || *entrants[5] != 6 {
		t.Errorf("shuffle modified the caller's entrant slice")
	}
}
