package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/fixture-engine/brackets"
	"github.com/Dosada05/fixture-engine/models"
	"github.com/Dosada05/fixture-engine/notify"
	"github.com/Dosada05/fixture-engine/repositories"
)

// stampMatches binds generated matches to their stage.
func stampMatches(stage models.Stage, matches []*models.Match) {
	for _, m := range matches {
		m.TournamentID = stage.TournamentID
		m.StageID = stage.ID
		if m.Status == "" {
			m.Status = models.StatusScheduled
		}
	}
}

func hasFinished(matches []*models.Match) bool {
	for _, m := range matches {
		if m.Finished() {
			return true
		}
	}
	return false
}

func matchIDs(matches []*models.Match) []int64 {
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}

// stageIntake returns the mappings targeting a groups stage: stored rows when
// there are any, otherwise the ones declared in the stage config.
func stageIntake(ctx context.Context, store repositories.Store, stage models.Stage) ([]models.IntakeMapping, error) {
	mappings, err := store.ListIntakeByTarget(ctx, stage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake for stage %d: %w", stage.ID, err)
	}
	if len(mappings) > 0 {
		return mappings, nil
	}
	declared := make([]models.IntakeMapping, 0, len(stage.Config.Intake))
	for _, m := range stage.Config.Intake {
		m.TargetStageID = stage.ID
		declared = append(declared, m)
	}
	return declared, nil
}

func assignedSlots(ctx context.Context, store repositories.Store, stageID int64) (map[models.SlotKey]int64, error) {
	slots, err := store.ListSlots(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake slots for stage %d: %w", stageID, err)
	}
	assigned := make(map[models.SlotKey]int64, len(slots))
	for _, a := range slots {
		assigned[a.Key()] = a.TeamID
	}
	return assigned, nil
}

// syncStageMatches replaces the scheduled matches of a stage with a freshly
// generated set, matching rows by structural key. Finished rows are kept.
func syncStageMatches(ctx context.Context, tx repositories.Store, stage models.Stage, generated []*models.Match, force bool) error {
	existing, err := tx.ListMatches(ctx, stage.ID, nil)
	if err != nil {
		return fmt.Errorf("failed to list matches of stage %d: %w", stage.ID, err)
	}
	if hasFinished(existing) && !force {
		return fmt.Errorf("%w: stage %d", ErrStageStarted, stage.ID)
	}

	stampMatches(stage, generated)
	if err := tx.UpsertMatches(ctx, generated); err != nil {
		return fmt.Errorf("failed to save matches of stage %d: %w", stage.ID, err)
	}

	keep := make(map[string]bool, len(generated))
	for _, m := range generated {
		keep[m.Key()] = true
	}
	var stale []int64
	for _, m := range existing {
		if !keep[m.Key()] && !m.Finished() {
			stale = append(stale, m.ID)
		}
	}
	if err := tx.DeleteMatches(ctx, stale); err != nil {
		return fmt.Errorf("failed to delete stale matches of stage %d: %w", stage.ID, err)
	}
	return nil
}

// recomputeStandings deletes and rebuilds every table of a league or groups stage.
func recomputeStandings(ctx context.Context, tx repositories.Store, stage models.Stage) ([]models.Standing, error) {
	finished := models.StatusFinished
	matches, err := tx.ListMatches(ctx, stage.ID, &finished)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished matches of stage %d: %w", stage.ID, err)
	}
	participants, err := tx.ListParticipants(ctx, stage.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of stage %d: %w", stage.ID, err)
	}

	if stage.Kind == models.StageLeague {
		rows := brackets.ComputeStandings(brackets.StandingsInput{
			StageID:      stage.ID,
			Participants: participants,
			Matches:      matches,
		})
		if err := tx.ReplaceStandings(ctx, stage.ID, nil, rows); err != nil {
			return nil, fmt.Errorf("failed to store standings of stage %d: %w", stage.ID, err)
		}
		return rows, nil
	}

	groups, err := tx.ListGroups(ctx, stage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of stage %d: %w", stage.ID, err)
	}
	slots, err := tx.ListSlots(ctx, stage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake slots of stage %d: %w", stage.ID, err)
	}

	var all []models.Standing
	for _, grp := range groups {
		idx := grp.Index
		groupID := grp.ID

		var members []models.Participant
		for _, p := range participants {
			if p.InGroup(&idx) {
				members = append(members, p)
			}
		}
		var extra []int64
		for _, a := range slots {
			if a.GroupIndex == idx {
				extra = append(extra, a.TeamID)
			}
		}
		var groupMatches []*models.Match
		for _, m := range matches {
			if m.GroupIndex != nil && *m.GroupIndex == idx {
				groupMatches = append(groupMatches, m)
			}
		}

		rows := brackets.ComputeStandings(brackets.StandingsInput{
			StageID:      stage.ID,
			GroupIndex:   &idx,
			GroupID:      &groupID,
			Participants: members,
			ExtraTeams:   extra,
			Matches:      groupMatches,
		})
		if err := tx.ReplaceStandings(ctx, stage.ID, &idx, rows); err != nil {
			return nil, fmt.Errorf("failed to store standings of group %s: %w", grp.Label(), err)
		}
		all = append(all, rows...)
	}
	return all, nil
}

// hydrateStage fills skeleton matches of a groups stage from the slot store.
// A group whose rows no longer fit its slot count is regenerated when none of
// its matches is finished; otherwise it is reported as stale and left alone.
func hydrateStage(ctx context.Context, tx repositories.Store, stage models.Stage, logger *slog.Logger) (int, []brackets.Warning, error) {
	mappings, err := stageIntake(ctx, tx, stage)
	if err != nil {
		return 0, nil, err
	}
	slotsByGroup := brackets.GroupSlots(mappings, stage.ID)
	if len(slotsByGroup) == 0 {
		return 0, nil, nil
	}
	assigned, err := assignedSlots(ctx, tx, stage.ID)
	if err != nil {
		return 0, nil, err
	}
	groups, err := tx.ListGroups(ctx, stage.ID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list groups of stage %d: %w", stage.ID, err)
	}
	existing, err := tx.ListMatches(ctx, stage.ID, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list matches of stage %d: %w", stage.ID, err)
	}

	byGroup := make(map[int][]*models.Match)
	for _, m := range existing {
		if m.GroupIndex != nil {
			byGroup[*m.GroupIndex] = append(byGroup[*m.GroupIndex], m)
		}
	}

	groupIndexes := make([]int, 0, len(slotsByGroup))
	for g := range slotsByGroup {
		groupIndexes = append(groupIndexes, g)
	}
	sort.Ints(groupIndexes)

	repeats := stage.Config.Rounds()
	var warnings []brackets.Warning
	var changed []*models.Match
	for _, g := range groupIndexes {
		slots := slotsByGroup[g]
		matches := byGroup[g]
		if !brackets.SkeletonMatches(matches, len(slots), repeats) {
			if hasFinished(matches) {
				warnings = append(warnings, brackets.Warning{
					Code:    brackets.WarnStaleGroup,
					Message: fmt.Sprintf("group %s has %d intake slots but its schedule was built for another layout", models.GroupLabel(g), len(slots)),
				})
				continue
			}
			if err := tx.DeleteMatches(ctx, matchIDs(matches)); err != nil {
				return 0, warnings, fmt.Errorf("failed to drop stale skeleton of group %s: %w", models.GroupLabel(g), err)
			}
			skeleton := brackets.Skeleton(len(slots), repeats)
			for _, m := range skeleton {
				idx := g
				m.GroupIndex = &idx
				for _, grp := range groups {
					if grp.Index == g {
						id := grp.ID
						m.GroupID = &id
					}
				}
			}
			stampMatches(stage, skeleton)
			if err := tx.UpsertMatches(ctx, skeleton); err != nil {
				return 0, warnings, fmt.Errorf("failed to save skeleton of group %s: %w", models.GroupLabel(g), err)
			}
			logger.InfoContext(ctx, "group skeleton regenerated",
				slog.Int64("stage_id", stage.ID), slog.Int("group_index", g), slog.Int("slots", len(slots)))
			matches = skeleton
		}
		changed = append(changed, brackets.Hydrate(matches, brackets.SlotTeams(slots, stage.ID, g, assigned), repeats)...)
	}

	for _, m := range changed {
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return 0, warnings, fmt.Errorf("failed to hydrate match %d: %w", m.ID, err)
		}
	}
	return len(changed), warnings, nil
}

// emit publishes an engine event; a delivery failure is only logged.
func emit(ctx context.Context, notifier notify.Notifier, logger *slog.Logger, event notify.Event) {
	if notifier == nil {
		return
	}
	event.At = time.Now()
	if err := notifier.Notify(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to deliver event",
			slog.String("event", string(event.Type)), slog.Int64("tournament_id", event.TournamentID), slog.Any("error", err))
	}
}
