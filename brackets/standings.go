package brackets

import (
	"sort"

	"github.com/Dosada05/fixture-engine/models"
)

// StandingsInput is everything a table of one stage/group is derived from.
type StandingsInput struct {
	StageID      int64
	GroupIndex   *int
	GroupID      *int64
	Participants []models.Participant
	ExtraTeams   []int64 // teams known only through intake slots
	Matches      []*models.Match
}

// ComputeStandings rebuilds a ranked table from scratch. Teams without matches
// still appear. While nothing has been played the table is the seeding baseline
// (seed, then team id); afterwards ties break on points, goal difference,
// goals for and finally team id.
func ComputeStandings(in StandingsInput) []models.Standing {
	rows := make(map[int64]*models.Standing)
	seeds := make(map[int64]int)
	order := make([]int64, 0, len(in.Participants)+len(in.ExtraTeams))

	add := func(team int64) *models.Standing {
		if row, ok := rows[team]; ok {
			return row
		}
		row := &models.Standing{
			StageID:    in.StageID,
			GroupIndex: in.GroupIndex,
			GroupID:    in.GroupID,
			TeamID:     team,
		}
		rows[team] = row
		order = append(order, team)
		return row
	}

	for _, p := range in.Participants {
		add(p.TeamID)
		if p.Seed != nil {
			seeds[p.TeamID] = *p.Seed
		}
	}
	for _, team := range in.ExtraTeams {
		add(team)
	}

	played := 0
	for _, m := range in.Matches {
		if !m.Finished() || m.TeamA == nil || m.TeamB == nil || m.ScoreA == nil || m.ScoreB == nil {
			continue
		}
		a, b := add(*m.TeamA), add(*m.TeamB)
		sa, sb := *m.ScoreA, *m.ScoreB
		played++

		a.Played++
		b.Played++
		a.GoalsFor += sa
		a.GoalsAgainst += sb
		b.GoalsFor += sb
		b.GoalsAgainst += sa

		switch {
		case m.IsDraw():
			a.Drawn++
			b.Drawn++
			a.Points += models.PointsDraw
			b.Points += models.PointsDraw
		case m.WinnerID != nil && *m.WinnerID == *m.TeamA, m.WinnerID == nil && sa > sb:
			a.Won++
			b.Lost++
			a.Points += models.PointsWin
			b.Points += models.PointsLoss
		case m.WinnerID != nil && *m.WinnerID == *m.TeamB, m.WinnerID == nil && sb > sa:
			b.Won++
			a.Lost++
			b.Points += models.PointsWin
			a.Points += models.PointsLoss
		}
	}

	table := make([]models.Standing, 0, len(order))
	for _, team := range order {
		table = append(table, *rows[team])
	}

	if played == 0 {
		sort.SliceStable(table, func(i, j int) bool {
			return baselineLess(table[i].TeamID, table[j].TeamID, seeds)
		})
	} else {
		sort.SliceStable(table, func(i, j int) bool {
			return standingLess(table[i], table[j])
		})
	}
	for i := range table {
		table[i].Rank = i + 1
	}
	return table
}

// BaselineStandings is the all-zero table ordered by seed, used to preview a
// bracket before any source match has finished.
func BaselineStandings(stageID int64, groupIndex *int, participants []models.Participant) []models.Standing {
	return ComputeStandings(StandingsInput{StageID: stageID, GroupIndex: groupIndex, Participants: participants})
}

func standingLess(a, b models.Standing) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference() != b.GoalDifference() {
		return a.GoalDifference() > b.GoalDifference()
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.TeamID < b.TeamID
}

func baselineLess(a, b int64, seeds map[int64]int) bool {
	sa, okA := seeds[a]
	sb, okB := seeds[b]
	switch {
	case okA && okB && sa != sb:
		return sa < sb
	case okA != okB:
		return okA
	}
	return a < b
}

// SeedOrdered returns participant team ids ordered by seed, unseeded last, then by id.
func SeedOrdered(participants []models.Participant) []*int64 {
	seeds := make(map[int64]int, len(participants))
	ids := make([]int64, 0, len(participants))
	seen := make(map[int64]bool, len(participants))
	for _, p := range participants {
		if seen[p.TeamID] {
			continue
		}
		seen[p.TeamID] = true
		ids = append(ids, p.TeamID)
		if p.Seed != nil {
			seeds[p.TeamID] = *p.Seed
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return baselineLess(ids[i], ids[j], seeds)
	})
	out := make([]*int64, len(ids))
	for i := range ids {
		id := ids[i]
		out[i] = &id
	}
	return out
}
