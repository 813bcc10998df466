package models

// Participant: участие команды в этапе (и, если есть, в конкретной группе).
type Participant struct {
	StageID    int64  `json:"stage_id" db:"stage_id"`
	GroupID    *int64 `json:"group_id,omitempty" db:"group_id"`
	GroupIndex *int   `json:"group_index,omitempty" db:"group_index"`
	TeamID     int64  `json:"team_id" db:"team_id"`
	Seed       *int   `json:"seed,omitempty" db:"seed"`
}

// InGroup reports whether the participant belongs to the group with the given index.
func (p Participant) InGroup(groupIndex *int) bool {
	if groupIndex == nil {
		return p.GroupIndex == nil
	}
	return p.GroupIndex != nil && *p.GroupIndex == *groupIndex
}
