package models

// StageKind определяет тип этапа турнира.
type StageKind string

const (
	StageLeague   StageKind = "league"
	StageGroups   StageKind = "groups"
	StageKnockout StageKind = "knockout"
)

func (k StageKind) Valid() bool {
	switch k {
	case StageLeague, StageGroups, StageKnockout:
		return true
	}
	return false
}

// RoundRobin reports whether matches of this kind are scheduled by matchday.
func (k StageKind) RoundRobin() bool {
	return k == StageLeague || k == StageGroups
}

// Stage is one phase of a tournament. Ordinal is the position within the tournament.
type Stage struct {
	ID           int64       `json:"id" db:"id"`
	TournamentID int64       `json:"tournament_id" db:"tournament_id"`
	Ordinal      int         `json:"ordinal" db:"ordinal"`
	Kind         StageKind   `json:"kind" db:"kind"`
	Name         string      `json:"name" db:"name"`
	Config       StageConfig `json:"config" db:"config"`
}

// Group belongs to a groups-kind stage. Index is the 0-based display order within the stage.
type Group struct {
	ID      int64  `json:"id" db:"id"`
	StageID int64  `json:"stage_id" db:"stage_id"`
	Index   int    `json:"index" db:"display_order"`
	Name    string `json:"name" db:"name"`
}

// Label returns "A", "B", ... for the group index; used in logs and cross rule names.
func (g Group) Label() string {
	return GroupLabel(g.Index)
}

func GroupLabel(index int) string {
	if index < 0 {
		return "?"
	}
	label := ""
	for n := index; ; n = n/26 - 1 {
		label = string(rune('A'+n%26)) + label
		if n < 26 {
			break
		}
	}
	return label
}
