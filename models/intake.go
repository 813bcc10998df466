package models

// IntakeMapping routes one knockout outcome into one slot of a later groups stage.
type IntakeMapping struct {
	ID            int64   `json:"id" db:"id"`
	SourceStageID int64   `json:"source_stage_id" db:"source_stage_id"`
	Round         int     `json:"round" db:"round"`
	BracketPos    int     `json:"bracket_pos" db:"bracket_pos"`
	Outcome       Outcome `json:"outcome" db:"outcome"`
	TargetStageID int64   `json:"target_stage_id" db:"target_stage_id"`
	GroupIndex    int     `json:"group_index" db:"group_index"`
	SlotIndex     int     `json:"slot_index" db:"slot_index"` // 1-based
}

func (m IntakeMapping) SourceCoord() Coord {
	return Coord{Round: m.Round, BracketPos: m.BracketPos}
}

// SlotKey addresses one row of the slot store.
type SlotKey struct {
	StageID    int64 `json:"stage_id"`
	GroupIndex int   `json:"group_index"`
	SlotIndex  int   `json:"slot_index"`
}

// SlotAssignment is a resolved intake slot: the team that occupies (stage, group, slot).
type SlotAssignment struct {
	StageID    int64 `json:"stage_id" db:"stage_id"`
	GroupIndex int   `json:"group_index" db:"group_index"`
	SlotIndex  int   `json:"slot_index" db:"slot_index"`
	TeamID     int64 `json:"team_id" db:"team_id"`
}

func (a SlotAssignment) Key() SlotKey {
	return SlotKey{StageID: a.StageID, GroupIndex: a.GroupIndex, SlotIndex: a.SlotIndex}
}
