package brackets

import (
	"testing"

	"github.com/Dosada05/fixture-engine/models"
)

func seed(v int) *int { return &v }

func finished(a, b int64, sa, sb int) *models.Match {
	m := &models.Match{TeamA: &a, TeamB: &b, ScoreA: &sa, ScoreB: &sb, Status: models.StatusFinished}
	switch {
	case sa > sb:
		m.WinnerID = &a
	case sb > sa:
		m.WinnerID = &b
	}
	return m
}

func ranking(rows []models.Standing) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.TeamID
	}
	return out
}

func TestComputeStandingsBaselineUsesSeeds(t *testing.T) {
	rows := ComputeStandings(StandingsInput{
		StageID: 1,
		Participants: []models.Participant{
			{TeamID: 30, Seed: seed(2)},
			{TeamID: 10},
			{TeamID: 20, Seed: seed(1)},
			{TeamID: 5},
		},
	})
	want := []int64{20, 30, 5, 10}
	got := ranking(rows)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("baseline = %v, want %v", got, want)
		}
		if rows[i].Rank != i+1 {
			t.Errorf("row %d has rank %d", i, rows[i].Rank)
		}
	}
}

func TestComputeStandingsTieBreaks(t *testing.T) {
	participants := []models.Participant{{TeamID: 1}, {TeamID: 2}, {TeamID: 3}, {TeamID: 4}}
	matches := []*models.Match{
		finished(1, 2, 2, 0), // 1: 3 pts
		finished(3, 4, 1, 0), // 3: 3 pts
		finished(2, 4, 1, 1),
		{TeamA: ptr64(1), TeamB: ptr64(3), Status: models.StatusScheduled},
	}
	rows := ComputeStandings(StandingsInput{StageID: 1, Participants: participants, Matches: matches})

	// 4 и 2 по очку, у 4 разница лучше
	want := []int64{1, 3, 4, 2}
	got := ranking(rows)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", got, want)
		}
	}
	top := rows[0]
	if top.Played != 1 || top.Won != 1 || top.Points != 3 || top.GoalsFor != 2 || top.GoalsAgainst != 0 {
		t.Errorf("leader row = %+v", top)
	}
	if last := rows[3]; last.Drawn != 1 || last.Lost != 1 || last.Points != 1 || last.GoalDifference() != -2 {
		t.Errorf("team 2 row = %+v, want one draw and one loss", last)
	}
}

func TestComputeStandingsIsDeterministic(t *testing.T) {
	participants := []models.Participant{{TeamID: 9}, {TeamID: 4}, {TeamID: 7}}
	matches := []*models.Match{finished(9, 4, 1, 1), finished(4, 7, 0, 0), finished(7, 9, 2, 2)}
	first := ranking(ComputeStandings(StandingsInput{Participants: participants, Matches: matches}))

	reversed := []*models.Match{matches[2], matches[1], matches[0]}
	second := ranking(ComputeStandings(StandingsInput{Participants: participants, Matches: reversed}))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("match order changed the table: %v vs %v", first, second)
		}
	}
	// у всех 2 очка и нулевая разница, решают забитые
	want := []int64{9, 7, 4}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", first, want)
		}
	}
}

func TestComputeStandingsIncludesIntakeTeams(t *testing.T) {
	g := 1
	rows := ComputeStandings(StandingsInput{StageID: 3, GroupIndex: &g, ExtraTeams: []int64{50, 40}})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].TeamID != 40 || rows[0].GroupIndex == nil || *rows[0].GroupIndex != 1 {
		t.Errorf("first row = %+v", rows[0])
	}
}

func TestComputeStandingsShootoutIsNotADraw(t *testing.T) {
	m := finished(1, 2, 1, 1)
	m.WinnerID = ptr64(2)
	rows := ComputeStandings(StandingsInput{StageID: 1, Matches: []*models.Match{m}})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if winner := rows[0]; winner.TeamID != 2 || winner.Won != 1 || winner.Drawn != 0 || winner.Points != models.PointsWin {
		t.Errorf("winner row = %+v", winner)
	}
	if loser := rows[1]; loser.Lost != 1 || loser.Drawn != 0 {
		t.Errorf("loser row = %+v", loser)
	}
}

func ptr64(v int64) *int64 { return &v }

func TestSeedOrdered(t *testing.T) {
	got := SeedOrdered([]models.Participant{
		{TeamID: 8},
		{TeamID: 3, Seed: seed(2)},
		{TeamID: 5, Seed: seed(1)},
		{TeamID: 3, Seed: seed(2)},
		{TeamID: 1},
	})
	want := []int64{5, 3, 1, 8}
	if len(got) != len(want) {
		t.Fatalf("got %d entrants, want %d", len(got), len(want))
	}
	for i := range want {
		if *got[i] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, *got[i], want[i])
		}
	}
}
