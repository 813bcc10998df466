package models

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusFinished  MatchStatus = "finished"
)

// Outcome selects which team of a finished knockout match a pointer or mapping refers to.
type Outcome string

const (
	OutcomeWinner Outcome = "W"
	OutcomeLoser  Outcome = "L"
)

func (o Outcome) Valid() bool {
	return o == OutcomeWinner || o == OutcomeLoser
}

// Coord is the structural coordinate of a knockout match inside its stage.
type Coord struct {
	Round      int `json:"round"`
	BracketPos int `json:"bracket_pos"`
}

func (c Coord) String() string {
	return fmt.Sprintf("R%dP%d", c.Round, c.BracketPos)
}

// SourcePointer references the match whose outcome fills a team slot.
// MatchID is optional: the coordinate alone is authoritative, so a reseeded
// bracket keeps its pointers valid.
type SourcePointer struct {
	MatchID    *int64  `json:"match_id,omitempty"`
	Round      int     `json:"round"`
	BracketPos int     `json:"bracket_pos"`
	Outcome    Outcome `json:"outcome"`
}

func (p SourcePointer) Coord() Coord {
	return Coord{Round: p.Round, BracketPos: p.BracketPos}
}

// Targets reports whether the pointer refers to the given match, by id or by coordinate.
func (p SourcePointer) Targets(m *Match) bool {
	if p.MatchID != nil && m.ID != 0 && *p.MatchID == m.ID {
		return true
	}
	if m.Round == nil || m.BracketPos == nil {
		return false
	}
	return p.Round == *m.Round && p.BracketPos == *m.BracketPos
}

type Match struct {
	ID           int64  `json:"id" db:"id"`
	TournamentID int64  `json:"tournament_id" db:"tournament_id"`
	StageID      int64  `json:"stage_id" db:"stage_id"`
	GroupID      *int64 `json:"group_id,omitempty" db:"group_id"`
	GroupIndex   *int   `json:"group_index,omitempty" db:"group_index"`

	// Round robin coordinate.
	Matchday *int `json:"matchday,omitempty" db:"matchday"`
	Ordinal  int  `json:"ordinal" db:"ordinal"`

	// Knockout coordinate.
	Round      *int `json:"round,omitempty" db:"round"`
	BracketPos *int `json:"bracket_pos,omitempty" db:"bracket_pos"`

	TeamA  *int64      `json:"team_a,omitempty" db:"team_a"`
	TeamB  *int64      `json:"team_b,omitempty" db:"team_b"`
	ScoreA *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB *int        `json:"score_b,omitempty" db:"score_b"`
	Status MatchStatus `json:"status" db:"status"`

	// nil при ничьей, если оба счёта заданы и равны.
	WinnerID *int64 `json:"winner_id,omitempty" db:"winner_id"`

	HomeSource *SourcePointer `json:"home_source,omitempty" db:"-"`
	AwaySource *SourcePointer `json:"away_source,omitempty" db:"-"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
}

func (m *Match) Finished() bool {
	return m.Status == StatusFinished
}

func (m *Match) IsDraw() bool {
	return m.Finished() && m.WinnerID == nil && m.ScoreA != nil && m.ScoreB != nil && *m.ScoreA == *m.ScoreB
}

// Coord returns the knockout coordinate, ok is false for round robin matches.
func (m *Match) Coord() (Coord, bool) {
	if m.Round == nil || m.BracketPos == nil {
		return Coord{}, false
	}
	return Coord{Round: *m.Round, BracketPos: *m.BracketPos}, true
}

// Loser returns the team that did not win. nil for draws and unresolved matches.
func (m *Match) Loser() *int64 {
	if m.WinnerID == nil || m.TeamA == nil || m.TeamB == nil {
		return nil
	}
	if *m.WinnerID == *m.TeamA {
		return m.TeamB
	}
	return m.TeamA
}

// OutcomeTeam resolves a W/L outcome to a team id.
func (m *Match) OutcomeTeam(o Outcome) *int64 {
	if !m.Finished() {
		return nil
	}
	switch o {
	case OutcomeWinner:
		return m.WinnerID
	case OutcomeLoser:
		return m.Loser()
	}
	return nil
}

// Key is the structural key used to de-duplicate generated matches and to
// upsert them without relying on row identity.
func (m *Match) Key() string {
	if c, ok := m.Coord(); ok {
		return fmt.Sprintf("s%d/ko/%s", m.StageID, c)
	}
	group := -1
	if m.GroupIndex != nil {
		group = *m.GroupIndex
	}
	matchday := 0
	if m.Matchday != nil {
		matchday = *m.Matchday
	}
	return fmt.Sprintf("s%d/g%d/md%d/o%d", m.StageID, group, matchday, m.Ordinal)
}

// HasTeam reports whether team plays in the match.
func (m *Match) HasTeam(team int64) bool {
	return (m.TeamA != nil && *m.TeamA == team) || (m.TeamB != nil && *m.TeamB == team)
}
