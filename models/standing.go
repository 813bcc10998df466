package models

import "time"

const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)

// Standing is a derived, ranked table row for one team in one stage/group.
type Standing struct {
	ID           int64     `json:"id" db:"id"`
	StageID      int64     `json:"stage_id" db:"stage_id"`
	GroupID      *int64    `json:"group_id,omitempty" db:"group_id"`
	GroupIndex   *int      `json:"group_index,omitempty" db:"group_index"`
	TeamID       int64     `json:"team_id" db:"team_id"`
	Played       int       `json:"played" db:"played"`
	Won          int       `json:"won" db:"won"`
	Drawn        int       `json:"drawn" db:"drawn"`
	Lost         int       `json:"lost" db:"lost"`
	GoalsFor     int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst int       `json:"goals_against" db:"goals_against"`
	Points       int       `json:"points" db:"points"`
	Rank         int       `json:"rank" db:"rank"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (s Standing) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}
