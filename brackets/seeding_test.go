package brackets

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/fixture-engine/models"
)

func table(teams ...int64) []models.Standing {
	rows := make([]models.Standing, len(teams))
	for i, team := range teams {
		rows[i] = models.Standing{TeamID: team, Rank: i + 1}
	}
	return rows
}

func TestSemifinalCross(t *testing.T) {
	src := SourceTable{Kind: models.StageGroups, Groups: [][]models.Standing{table(1, 2, 5), table(3, 4, 6)}}

	tests := []struct {
		cross    models.SemiCross
		sf1, sf2 [2]int64
	}{
		{models.CrossA1B2, [2]int64{1, 4}, [2]int64{3, 2}},
		{models.CrossA1B1, [2]int64{1, 3}, [2]int64{2, 4}},
	}
	for _, tt := range tests {
		cfg := models.StageConfig{SemiCross: tt.cross, AdvancersPerGroup: 2}
		matches, err := SeedKnockout(context.Background(), cfg, src)
		if err != nil {
			t.Fatalf("%s: %v", tt.cross, err)
		}
		if len(matches) != 3 {
			t.Fatalf("%s: got %d matches, want 3", tt.cross, len(matches))
		}
		coords := byCoord(matches)
		sf1 := coords[models.Coord{Round: 1, BracketPos: 1}]
		sf2 := coords[models.Coord{Round: 1, BracketPos: 2}]
		if *sf1.TeamA != tt.sf1[0] || *sf1.TeamB != tt.sf1[1] {
			t.Errorf("%s: sf1 = %d vs %d, want %v", tt.cross, *sf1.TeamA, *sf1.TeamB, tt.sf1)
		}
		if *sf2.TeamA != tt.sf2[0] || *sf2.TeamB != tt.sf2[1] {
			t.Errorf("%s: sf2 = %d vs %d, want %v", tt.cross, *sf2.TeamA, *sf2.TeamB, tt.sf2)
		}
		if final := coords[models.Coord{Round: 2, BracketPos: 1}]; final.HomeSource == nil || final.AwaySource == nil {
			t.Errorf("%s: final is not fed by the semifinals", tt.cross)
		}
	}
}

func TestSeedKnockoutTiersFromGroups(t *testing.T) {
	src := SourceTable{Kind: models.StageGroups, Groups: [][]models.Standing{
		table(1, 2), table(3, 4), table(5, 6), table(7, 8),
	}}
	entrants := SeedTiers(src, 2)
	want := []int64{1, 3, 5, 7, 2, 4, 6, 8}
	for i := range want {
		if *entrants[i] != want[i] {
			t.Fatalf("tiers = %v, want %v", entrants, want)
		}
	}

	matches, err := SeedKnockout(context.Background(), models.StageConfig{AdvancersPerGroup: 2}, src)
	if err != nil {
		t.Fatalf("SeedKnockout: %v", err)
	}
	if len(matches) != 7 {
		t.Fatalf("got %d matches, want 7", len(matches))
	}
	// seed 1 (A1) meets seed 8 (D2)
	first := byCoord(matches)[models.Coord{Round: 1, BracketPos: 1}]
	if *first.TeamA != 1 || *first.TeamB != 8 {
		t.Errorf("R1P1 = %d vs %d, want 1 vs 8", *first.TeamA, *first.TeamB)
	}
}

func TestSeedKnockoutFromLeague(t *testing.T) {
	src := SourceTable{Kind: models.StageLeague, Groups: [][]models.Standing{table(10, 20, 30, 40, 50, 60)}}
	matches, err := SeedKnockout(context.Background(), models.StageConfig{BracketSize: 4}, src)
	if err != nil {
		t.Fatalf("SeedKnockout: %v", err)
	}
	coords := byCoord(matches)
	sf1 := coords[models.Coord{Round: 1, BracketPos: 1}]
	sf2 := coords[models.Coord{Round: 1, BracketPos: 2}]
	if *sf1.TeamA != 10 || *sf1.TeamB != 40 || *sf2.TeamA != 20 || *sf2.TeamB != 30 {
		t.Errorf("semifinals = %d-%d, %d-%d, want 10-40, 20-30", *sf1.TeamA, *sf1.TeamB, *sf2.TeamA, *sf2.TeamB)
	}

	_, err = SeedKnockout(context.Background(), models.StageConfig{BracketSize: 1}, src)
	if !errors.Is(err, ErrNotEnoughEntrants) {
		t.Errorf("one qualifier: got %v, want ErrNotEnoughEntrants", err)
	}
}

func TestSourceComplete(t *testing.T) {
	if SourceComplete(nil) {
		t.Error("empty stage reported complete")
	}
	done := finished(1, 2, 1, 0)
	pending := &models.Match{Status: models.StatusScheduled}
	if !SourceComplete([]*models.Match{done}) {
		t.Error("finished stage reported incomplete")
	}
	if SourceComplete([]*models.Match{done, pending}) {
		t.Error("stage with a scheduled match reported complete")
	}
}
