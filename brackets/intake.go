package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/fixture-engine/models"
)

// Warning is a non-blocking finding surfaced to the editor.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	WarnDuplicateSource = "duplicate_intake_source"
	WarnStaleGroup      = "stale_group_signature"
	WarnSmallGroup      = "group_too_small"
)

// GroupSlots returns the distinct slot indices mapped into each group of the
// target stage, sorted ascending. Sparse indices do not inflate a group.
func GroupSlots(mappings []models.IntakeMapping, targetStageID int64) map[int][]int {
	seen := make(map[int]map[int]bool)
	for _, m := range mappings {
		if m.TargetStageID != targetStageID {
			continue
		}
		if seen[m.GroupIndex] == nil {
			seen[m.GroupIndex] = make(map[int]bool)
		}
		seen[m.GroupIndex][m.SlotIndex] = true
	}
	out := make(map[int][]int, len(seen))
	for g, slots := range seen {
		list := make([]int, 0, len(slots))
		for s := range slots {
			list = append(list, s)
		}
		sort.Ints(list)
		out[g] = list
	}
	return out
}

// SlotCounts is the team count per group derived from distinct mapped slots.
func SlotCounts(mappings []models.IntakeMapping, targetStageID int64) map[int]int {
	counts := make(map[int]int)
	for g, slots := range GroupSlots(mappings, targetStageID) {
		counts[g] = len(slots)
	}
	return counts
}

// Skeleton returns the round robin schedule of a group whose teams are not
// known yet: same pairing order as a regular group, every team id nil.
func Skeleton(slotCount, repeats int) []*models.Match {
	pairings := RoundRobinPairings(slotCount, repeats)
	matches := make([]*models.Match, 0, len(pairings))
	for _, p := range pairings {
		matches = append(matches, &models.Match{
			Matchday: intPtr(p.Matchday),
			Ordinal:  p.Ordinal,
			Status:   models.StatusScheduled,
		})
	}
	return matches
}

// SlotTeams lines up the resolved team of every mapped slot of one group, in
// slot order. Unresolved slots are nil.
func SlotTeams(slots []int, stageID int64, groupIndex int, assigned map[models.SlotKey]int64) []*int64 {
	teams := make([]*int64, len(slots))
	for i, slot := range slots {
		if team, ok := assigned[models.SlotKey{StageID: stageID, GroupIndex: groupIndex, SlotIndex: slot}]; ok {
			t := team
			teams[i] = &t
		}
	}
	return teams
}

type roundRobinCoord struct {
	matchday int
	ordinal  int
}

// Hydrate fills still-empty team slots of skeleton matches from the resolved
// slot teams. It regenerates the pairing order and matches skeleton rows by
// (matchday, ordinal). A non-nil team is never overwritten and finished
// matches are never touched. It returns the matches it changed.
func Hydrate(matches []*models.Match, slotTeams []*int64, repeats int) []*models.Match {
	byCoord := make(map[roundRobinCoord]*models.Match, len(matches))
	for _, m := range matches {
		if m.Matchday == nil {
			continue
		}
		byCoord[roundRobinCoord{*m.Matchday, m.Ordinal}] = m
	}

	var changed []*models.Match
	for _, p := range RoundRobinPairings(len(slotTeams), repeats) {
		m, ok := byCoord[roundRobinCoord{p.Matchday, p.Ordinal}]
		if !ok || m.Finished() {
			continue
		}
		touched := false
		if m.TeamA == nil && slotTeams[p.Home] != nil {
			m.TeamA = slotTeams[p.Home]
			touched = true
		}
		if m.TeamB == nil && slotTeams[p.Away] != nil {
			m.TeamB = slotTeams[p.Away]
			touched = true
		}
		if touched {
			changed = append(changed, m)
		}
	}
	return changed
}

// SkeletonMatches reports whether a group's existing rows have the shape of a
// skeleton for slotCount teams. A mismatch means the slot layout was edited
// after the schedule was generated.
func SkeletonMatches(matches []*models.Match, slotCount, repeats int) bool {
	expected := RoundRobinPairings(slotCount, repeats)
	if len(expected) != len(matches) {
		return false
	}
	have := make(map[roundRobinCoord]bool, len(matches))
	for _, m := range matches {
		if m.Matchday == nil {
			return false
		}
		have[roundRobinCoord{*m.Matchday, m.Ordinal}] = true
	}
	for _, p := range expected {
		if !have[roundRobinCoord{p.Matchday, p.Ordinal}] {
			return false
		}
	}
	return true
}

// NormalizeSlots renumbers slot indices so that each (target stage, group) uses
// the contiguous sequence 1..k, keeping the existing relative order.
func NormalizeSlots(mappings []models.IntakeMapping) []models.IntakeMapping {
	type groupKey struct {
		stage int64
		group int
	}
	out := append([]models.IntakeMapping(nil), mappings...)

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ma, mb := out[idx[a]], out[idx[b]]
		if ma.TargetStageID != mb.TargetStageID {
			return ma.TargetStageID < mb.TargetStageID
		}
		if ma.GroupIndex != mb.GroupIndex {
			return ma.GroupIndex < mb.GroupIndex
		}
		if ma.SlotIndex != mb.SlotIndex {
			return ma.SlotIndex < mb.SlotIndex
		}
		return ma.ID < mb.ID
	})

	next := make(map[groupKey]int)
	last := make(map[groupKey]int)
	for _, i := range idx {
		key := groupKey{out[i].TargetStageID, out[i].GroupIndex}
		// дубли одного слота остаются вместе
		if prev, ok := last[key]; ok && prev == out[i].SlotIndex {
			out[i].SlotIndex = next[key]
			continue
		}
		last[key] = out[i].SlotIndex
		next[key]++
		out[i].SlotIndex = next[key]
	}
	return out
}

// ValidateIntake checks mappings targeting one groups stage against the source
// bracket. Errors block generation of the target stage; warnings do not.
func ValidateIntake(mappings []models.IntakeMapping, sourceBracket []*models.Match, groupCount int) ([]error, []Warning) {
	coords := make(map[models.Coord]bool, len(sourceBracket))
	for _, m := range sourceBracket {
		if c, ok := m.Coord(); ok {
			coords[c] = true
		}
	}

	var errs []error
	var warnings []Warning
	type sourceKey struct {
		stage   int64
		coord   models.Coord
		outcome models.Outcome
	}
	sources := make(map[sourceKey]int)
	for _, m := range mappings {
		if !m.Outcome.Valid() {
			errs = append(errs, fmt.Errorf("%w: mapping %s has unknown outcome %q", ErrInvalidConfig, m.SourceCoord(), m.Outcome))
		}
		if !coords[m.SourceCoord()] {
			errs = append(errs, fmt.Errorf("%w: mapping references %s which does not exist in the source bracket", ErrInvalidConfig, m.SourceCoord()))
		}
		if m.GroupIndex < 0 || m.GroupIndex >= groupCount {
			errs = append(errs, fmt.Errorf("%w: group index %d out of range (stage has %d groups)", ErrInvalidConfig, m.GroupIndex, groupCount))
		}
		if m.SlotIndex < 1 {
			errs = append(errs, fmt.Errorf("%w: slot index %d out of range (slots are 1-based)", ErrInvalidConfig, m.SlotIndex))
		}
		key := sourceKey{m.SourceStageID, m.SourceCoord(), m.Outcome}
		sources[key]++
		if sources[key] == 2 {
			warnings = append(warnings, Warning{
				Code:    WarnDuplicateSource,
				Message: fmt.Sprintf("%s outcome %s feeds more than one slot", m.SourceCoord(), m.Outcome),
			})
		}
	}
	return errs, warnings
}
