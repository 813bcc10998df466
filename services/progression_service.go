package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/fixture-engine/brackets"
	"github.com/Dosada05/fixture-engine/models"
	"github.com/Dosada05/fixture-engine/notify"
	"github.com/Dosada05/fixture-engine/repositories"
	"github.com/Dosada05/fixture-engine/storage"
)

// Result is a final score supplied by the caller. WinnerID may be omitted when
// the scores decide the match.
type Result struct {
	ScoreA   int    `json:"score_a"`
	ScoreB   int    `json:"score_b"`
	WinnerID *int64 `json:"winner_id,omitempty"`
}

// ProgressReport describes what one progression pass changed.
type ProgressReport struct {
	MatchID          int64               `json:"match_id"`
	StageID          int64               `json:"stage_id"`
	Propagated       int                 `json:"propagated"`
	IntakeCreated    int                 `json:"intake_created"`
	SlotsWritten     int                 `json:"slots_written"`
	Hydrated         int                 `json:"hydrated"`
	StandingsUpdated bool                `json:"standings_updated"`
	Reseeded         []int64             `json:"reseeded,omitempty"`
	Completed        bool                `json:"completed"`
	Warnings         []ValidationWarning `json:"warnings,omitempty"`
	Errors           []string            `json:"errors,omitempty"`
}

type ProgressionService interface {
	// FinishMatch records a result and runs the progression pass. Finishing a
	// finished match again with the same result only re-runs the pass.
	FinishMatch(ctx context.Context, matchID int64, result Result) (*ProgressReport, error)
	// Progress re-runs the progression pass for a finished match.
	Progress(ctx context.Context, matchID int64) (*ProgressReport, error)
	// ReseedKnockout rebuilds a knockout stage from its source stage.
	ReseedKnockout(ctx context.Context, stageID int64, allowEarly, force bool) ([]*models.Match, error)
}

type progressionService struct {
	store    repositories.Store
	notifier notify.Notifier
	archiver *storage.SnapshotArchiver
	logger   *slog.Logger
}

// NewProgressionService creates the progression engine. archiver may be nil.
func NewProgressionService(store repositories.Store, notifier notify.Notifier, archiver *storage.SnapshotArchiver, logger *slog.Logger) ProgressionService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &progressionService{store: store, notifier: notifier, archiver: archiver, logger: logger}
}

func (s *progressionService) FinishMatch(ctx context.Context, matchID int64, result Result) (*ProgressReport, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	var finished *models.Match
	err = s.store.InStageTx(ctx, m.StageID, func(ctx context.Context, tx repositories.Store) error {
		current, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return handleRepositoryError(err)
		}
		stage, err := tx.GetStage(ctx, current.StageID)
		if err != nil {
			return handleRepositoryError(err)
		}
		changed, err := applyResult(stage, current, result)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.UpdateMatch(ctx, current); err != nil {
				return fmt.Errorf("failed to save result of match %d: %w", matchID, err)
			}
		}
		finished = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "match finished",
		slog.Int64("match_id", finished.ID), slog.Int64("stage_id", finished.StageID),
		slog.Int("score_a", *finished.ScoreA), slog.Int("score_b", *finished.ScoreB))
	emit(ctx, s.notifier, s.logger, notify.Event{
		Type:         notify.EventMatchFinished,
		TournamentID: finished.TournamentID,
		StageID:      finished.StageID,
		MatchID:      finished.ID,
		Payload:      finished,
	})
	return s.progress(ctx, finished)
}

// applyResult validates the result against the match and its stage and writes
// it into m. changed is false when m already holds the same result.
func applyResult(stage *models.Stage, m *models.Match, res Result) (bool, error) {
	if m.TeamA == nil || m.TeamB == nil {
		return false, fmt.Errorf("%w: match %d", ErrTeamsNotResolved, m.ID)
	}
	if res.ScoreA < 0 || res.ScoreB < 0 {
		return false, fmt.Errorf("%w: negative score", ErrInvalidResult)
	}
	winner := res.WinnerID
	if winner != nil && !m.HasTeam(*winner) {
		return false, fmt.Errorf("%w: team %d does not play in match %d", ErrInvalidResult, *winner, m.ID)
	}

	switch {
	case res.ScoreA > res.ScoreB:
		if winner != nil && *winner != *m.TeamA {
			return false, fmt.Errorf("%w: winner %d lost %d-%d", ErrInvalidResult, *winner, res.ScoreA, res.ScoreB)
		}
		winner = m.TeamA
	case res.ScoreB > res.ScoreA:
		if winner != nil && *winner != *m.TeamB {
			return false, fmt.Errorf("%w: winner %d lost %d-%d", ErrInvalidResult, *winner, res.ScoreA, res.ScoreB)
		}
		winner = m.TeamB
	case winner == nil:
		if !stage.Config.DrawsAllowed(stage.Kind) {
			return false, fmt.Errorf("%w: stage %d", ErrDrawNotAllowed, stage.ID)
		}
	case stage.Kind != models.StageKnockout:
		// в круговых этапах равный счёт всегда ничья
		return false, fmt.Errorf("%w: a level score is a draw in %s stages", ErrInvalidResult, stage.Kind)
	}

	if m.Finished() {
		if sameResult(m, res.ScoreA, res.ScoreB, winner) {
			return false, nil
		}
		return false, fmt.Errorf("%w: match %d", ErrMatchAlreadyFinished, m.ID)
	}

	scoreA, scoreB := res.ScoreA, res.ScoreB
	m.ScoreA, m.ScoreB = &scoreA, &scoreB
	m.WinnerID = nil
	if winner != nil {
		w := *winner
		m.WinnerID = &w
	}
	m.Status = models.StatusFinished
	return true, nil
}

func sameResult(m *models.Match, scoreA, scoreB int, winner *int64) bool {
	if m.ScoreA == nil || m.ScoreB == nil || *m.ScoreA != scoreA || *m.ScoreB != scoreB {
		return false
	}
	if m.WinnerID == nil || winner == nil {
		return m.WinnerID == nil && winner == nil
	}
	return *m.WinnerID == *winner
}

func (s *progressionService) Progress(ctx context.Context, matchID int64) (*ProgressReport, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if !m.Finished() {
		return nil, fmt.Errorf("%w: match %d", ErrMatchNotFinished, matchID)
	}
	return s.progress(ctx, m)
}

func (s *progressionService) stepFailed(ctx context.Context, report *ProgressReport, step string, err error) {
	s.logger.ErrorContext(ctx, "progression step failed",
		slog.String("step", step), slog.Int64("match_id", report.MatchID), slog.Int64("stage_id", report.StageID), slog.Any("error", err))
	report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", step, err))
}

// progress runs the progression pass for a finished match. Every step runs in
// its own stage transaction, so a failing later step never undoes an earlier
// one. Only a failure of knockout propagation is returned; the other steps are
// logged and recorded in the report.
func (s *progressionService) progress(ctx context.Context, m *models.Match) (*ProgressReport, error) {
	report := &ProgressReport{MatchID: m.ID, StageID: m.StageID}
	stage, err := s.store.GetStage(ctx, m.StageID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	updated := make(map[int64]bool)

	if _, ok := m.Coord(); ok {
		err := s.store.InStageTx(ctx, stage.ID, func(ctx context.Context, tx repositories.Store) error {
			n, err := propagateResults(ctx, tx, stage.ID, []*models.Match{m}, s.logger)
			report.Propagated = n
			return err
		})
		if err != nil {
			return report, fmt.Errorf("knockout propagation from match %d: %w", m.ID, err)
		}
		if report.Propagated > 0 {
			updated[stage.ID] = true
		}

		if n, err := s.autoIntake(ctx, *stage, m); err != nil {
			s.stepFailed(ctx, report, "auto_intake", err)
		} else {
			report.IntakeCreated = n
		}

		targets, written, err := s.applyIntake(ctx, *stage, m)
		report.SlotsWritten = written
		if err != nil {
			s.stepFailed(ctx, report, "apply_intake", err)
		}

		for _, targetID := range targets {
			n, warnings, err := s.hydrateTarget(ctx, targetID)
			report.Hydrated += n
			report.Warnings = append(report.Warnings, toValidationWarnings(targetID, warnings)...)
			if err != nil {
				s.stepFailed(ctx, report, "hydrate", err)
				continue
			}
			updated[targetID] = true
		}
	}

	if stage.Kind.RoundRobin() {
		var rows []models.Standing
		err := s.store.InStageTx(ctx, stage.ID, func(ctx context.Context, tx repositories.Store) error {
			var err error
			rows, err = recomputeStandings(ctx, tx, *stage)
			return err
		})
		if err != nil {
			s.stepFailed(ctx, report, "standings", err)
		} else {
			report.StandingsUpdated = true
			emit(ctx, s.notifier, s.logger, notify.Event{
				Type:         notify.EventStandingsUpdated,
				TournamentID: stage.TournamentID,
				StageID:      stage.ID,
				Payload:      rows,
			})
		}
		s.seedDownstream(ctx, *stage, report)
	}

	completed, err := s.checkCompletion(ctx, stage.TournamentID)
	if err != nil {
		s.stepFailed(ctx, report, "completion", err)
	}
	report.Completed = completed

	ids := make([]int64, 0, len(updated))
	for id := range updated {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		emit(ctx, s.notifier, s.logger, notify.Event{
			Type:         notify.EventMatchesUpdated,
			TournamentID: stage.TournamentID,
			StageID:      id,
		})
	}
	return report, nil
}

// propagateResults fills the team slots whose source pointers target one of
// the finished matches. A slot that is already set is left alone.
func propagateResults(ctx context.Context, tx repositories.Store, stageID int64, sources []*models.Match, logger *slog.Logger) (int, error) {
	matches, err := tx.ListMatches(ctx, stageID, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list matches of stage %d: %w", stageID, err)
	}

	var changed []*models.Match
	for _, target := range matches {
		if target.Finished() {
			continue
		}
		touched := false
		for _, src := range sources {
			if fillSlot(ctx, target.HomeSource, &target.TeamA, src, target, logger) {
				touched = true
			}
			if fillSlot(ctx, target.AwaySource, &target.TeamB, src, target, logger) {
				touched = true
			}
		}
		if touched {
			changed = append(changed, target)
		}
	}

	for _, m := range changed {
		if err := tx.UpdateMatch(ctx, m); err != nil {
			return 0, fmt.Errorf("failed to update match %d: %w", m.ID, err)
		}
	}
	return len(changed), nil
}

// propagateFinished re-applies every finished match of a knockout stage, e.g.
// after a forced rebuild replaced the later rounds.
func propagateFinished(ctx context.Context, tx repositories.Store, stageID int64, logger *slog.Logger) (int, error) {
	status := models.StatusFinished
	finished, err := tx.ListMatches(ctx, stageID, &status)
	if err != nil {
		return 0, fmt.Errorf("failed to list finished matches of stage %d: %w", stageID, err)
	}
	return propagateResults(ctx, tx, stageID, finished, logger)
}

func fillSlot(ctx context.Context, ptr *models.SourcePointer, slot **int64, src, target *models.Match, logger *slog.Logger) bool {
	if ptr == nil || !ptr.Targets(src) {
		return false
	}
	team := src.OutcomeTeam(ptr.Outcome)
	if team == nil {
		return false
	}
	if *slot != nil {
		if **slot != *team {
			logger.DebugContext(ctx, "propagation conflict skipped",
				slog.Int64("match_id", target.ID), slog.Int64("slot_team", **slot), slog.Int64("source_team", *team))
		}
		return false
	}
	t := *team
	*slot = &t
	return true
}

// intakeTarget picks the groups stage that receives knockout outcomes: the
// one naming this stage as its intake source, else the next groups stage if
// it has no declared participants.
func (s *progressionService) intakeTarget(ctx context.Context, ko models.Stage) (*models.Stage, error) {
	stages, err := s.store.ListStages(ctx, ko.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages of tournament %d: %w", ko.TournamentID, err)
	}
	for i := range stages {
		st := stages[i]
		if st.Kind == models.StageGroups && st.Config.IntakeSourceStageID != nil && *st.Config.IntakeSourceStageID == ko.ID {
			if st.Ordinal <= ko.Ordinal {
				s.logger.WarnContext(ctx, "intake target is not after its knockout stage",
					slog.Int64("stage_id", st.ID), slog.Int64("source_stage_id", ko.ID))
				return nil, nil
			}
			return &st, nil
		}
	}
	for i := range stages {
		st := stages[i]
		if st.Kind != models.StageGroups || st.Ordinal <= ko.Ordinal {
			continue
		}
		participants, err := s.store.ListParticipants(ctx, st.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list participants of stage %d: %w", st.ID, err)
		}
		if len(participants) > 0 {
			return nil, nil
		}
		return &st, nil
	}
	return nil, nil
}

// autoIntake creates the default mappings for a knockout match that has none:
// winner into the first group, loser into the second when there is one.
func (s *progressionService) autoIntake(ctx context.Context, ko models.Stage, m *models.Match) (int, error) {
	coord, _ := m.Coord()
	existing, err := s.store.ListIntakeBySource(ctx, ko.ID, coord)
	if err != nil {
		return 0, fmt.Errorf("failed to list intake for %s: %w", coord, err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	target, err := s.intakeTarget(ctx, ko)
	if err != nil || target == nil {
		return 0, err
	}
	if len(target.Config.Intake) > 0 {
		// раскладка задана вручную
		return 0, nil
	}
	groups, err := s.store.ListGroups(ctx, target.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list groups of stage %d: %w", target.ID, err)
	}
	if len(groups) == 0 {
		return 0, nil
	}

	created := 0
	err = s.store.InStageTx(ctx, target.ID, func(ctx context.Context, tx repositories.Store) error {
		existing, err := tx.ListIntakeBySource(ctx, ko.ID, coord)
		if err != nil || len(existing) > 0 {
			return err
		}
		mappings, err := tx.ListIntakeByTarget(ctx, target.ID)
		if err != nil {
			return err
		}
		nextSlot := make(map[int]int)
		for _, mp := range mappings {
			if mp.SlotIndex > nextSlot[mp.GroupIndex] {
				nextSlot[mp.GroupIndex] = mp.SlotIndex
			}
		}

		type route struct {
			outcome models.Outcome
			group   int
		}
		routes := []route{{models.OutcomeWinner, groups[0].Index}}
		if len(groups) >= 2 {
			routes = append(routes, route{models.OutcomeLoser, groups[1].Index})
		}
		for _, r := range routes {
			nextSlot[r.group]++
			mapping := models.IntakeMapping{
				SourceStageID: ko.ID,
				Round:         coord.Round,
				BracketPos:    coord.BracketPos,
				Outcome:       r.outcome,
				TargetStageID: target.ID,
				GroupIndex:    r.group,
				SlotIndex:     nextSlot[r.group],
			}
			if err := tx.InsertIntake(ctx, &mapping); err != nil {
				return fmt.Errorf("failed to create intake mapping for %s: %w", coord, err)
			}
			created++
		}
		return nil
	})
	if created > 0 {
		s.logger.InfoContext(ctx, "default intake mappings created",
			slog.Int64("stage_id", ko.ID), slog.String("coord", coord.String()), slog.Int64("target_stage_id", target.ID), slog.Int("count", created))
	}
	return created, err
}

// applyIntake writes the resolved teams of a finished knockout match into the
// slot store and returns the touched target stages.
func (s *progressionService) applyIntake(ctx context.Context, ko models.Stage, m *models.Match) ([]int64, int, error) {
	coord, _ := m.Coord()
	mappings, err := s.store.ListIntakeBySource(ctx, ko.ID, coord)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list intake for %s: %w", coord, err)
	}

	byTarget := make(map[int64][]models.IntakeMapping)
	for _, mp := range mappings {
		byTarget[mp.TargetStageID] = append(byTarget[mp.TargetStageID], mp)
	}
	targets := make([]int64, 0, len(byTarget))
	for id := range byTarget {
		targets = append(targets, id)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	written := 0
	touched := make([]int64, 0, len(targets))
	for _, targetID := range targets {
		err := s.store.InStageTx(ctx, targetID, func(ctx context.Context, tx repositories.Store) error {
			for _, mp := range byTarget[targetID] {
				team := m.OutcomeTeam(mp.Outcome)
				if team == nil {
					continue
				}
				if err := tx.UpsertSlot(ctx, models.SlotAssignment{
					StageID:    targetID,
					GroupIndex: mp.GroupIndex,
					SlotIndex:  mp.SlotIndex,
					TeamID:     *team,
				}); err != nil {
					return fmt.Errorf("failed to write slot %d of group %s: %w", mp.SlotIndex, models.GroupLabel(mp.GroupIndex), err)
				}
				written++
			}
			return nil
		})
		if err != nil {
			return touched, written, err
		}
		touched = append(touched, targetID)
	}
	return touched, written, nil
}

// hydrateTarget fills the skeleton of a groups stage and refreshes its tables
// so that newly known teams appear.
func (s *progressionService) hydrateTarget(ctx context.Context, stageID int64) (int, []brackets.Warning, error) {
	var hydrated int
	var warnings []brackets.Warning
	err := s.store.InStageTx(ctx, stageID, func(ctx context.Context, tx repositories.Store) error {
		stage, err := tx.GetStage(ctx, stageID)
		if err != nil {
			return handleRepositoryError(err)
		}
		hydrated, warnings, err = hydrateStage(ctx, tx, *stage, s.logger)
		if err != nil {
			return err
		}
		_, err = recomputeStandings(ctx, tx, *stage)
		return err
	})
	return hydrated, warnings, err
}

// seedDownstream reseeds every knockout stage fed by this stage. A started or
// not yet seedable knockout is skipped quietly.
func (s *progressionService) seedDownstream(ctx context.Context, source models.Stage, report *ProgressReport) {
	stages, err := s.store.ListStages(ctx, source.TournamentID)
	if err != nil {
		s.stepFailed(ctx, report, "seed_downstream", err)
		return
	}
	for _, st := range stages {
		if st.Kind != models.StageKnockout || st.Config.SourceStageID == nil || *st.Config.SourceStageID != source.ID {
			continue
		}
		_, err := s.reseed(ctx, st, st.Config.AllowEarly, false)
		switch {
		case err == nil:
			report.Reseeded = append(report.Reseeded, st.ID)
		case errors.Is(err, ErrStageStarted), errors.Is(err, ErrSourceIncomplete):
			s.logger.DebugContext(ctx, "downstream knockout not reseeded",
				slog.Int64("stage_id", st.ID), slog.String("reason", err.Error()))
		default:
			s.stepFailed(ctx, report, "seed_downstream", err)
		}
	}
}

func (s *progressionService) ReseedKnockout(ctx context.Context, stageID int64, allowEarly, force bool) ([]*models.Match, error) {
	stage, err := s.store.GetStage(ctx, stageID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if stage.Kind != models.StageKnockout {
		return nil, fmt.Errorf("%w: stage %d is %s", ErrNotKnockoutStage, stageID, stage.Kind)
	}
	return s.reseed(ctx, *stage, allowEarly, force)
}

func (s *progressionService) reseed(ctx context.Context, ko models.Stage, allowEarly, force bool) ([]*models.Match, error) {
	cfg := ko.Config
	if cfg.SourceStageID == nil {
		return nil, &ConfigurationError{StageID: ko.ID, Reason: "knockout stage has no source stage"}
	}
	src, err := s.store.GetStage(ctx, *cfg.SourceStageID)
	if errors.Is(err, repositories.ErrStageNotFound) {
		return nil, &ConfigurationError{StageID: ko.ID, Reason: fmt.Sprintf("source stage %d not found", *cfg.SourceStageID)}
	}
	if err != nil {
		return nil, err
	}
	switch {
	case src.TournamentID != ko.TournamentID:
		return nil, &ConfigurationError{StageID: ko.ID, Reason: fmt.Sprintf("source stage %d belongs to another tournament", src.ID)}
	case src.Ordinal >= ko.Ordinal:
		return nil, &ConfigurationError{StageID: ko.ID, Reason: fmt.Sprintf("source stage %d is not earlier than stage %d", src.ID, ko.ID)}
	case src.Kind == models.StageKnockout:
		return nil, &ConfigurationError{StageID: ko.ID, Reason: "a knockout stage cannot be seeded from another knockout"}
	}

	srcMatches, err := s.store.ListMatches(ctx, src.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of source stage %d: %w", src.ID, err)
	}
	if !allowEarly && !brackets.SourceComplete(srcMatches) {
		return nil, fmt.Errorf("%w: stage %d", ErrSourceIncomplete, src.ID)
	}
	groups, err := s.store.ListGroups(ctx, src.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of stage %d: %w", src.ID, err)
	}
	participants, err := s.store.ListParticipants(ctx, src.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of stage %d: %w", src.ID, err)
	}
	standings, err := s.store.ListStandings(ctx, src.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings of stage %d: %w", src.ID, err)
	}

	matches, err := brackets.SeedKnockout(ctx, cfg, brackets.PreviewTable(*src, groups, participants, standings))
	if err != nil {
		return nil, asConfigurationError(ko.ID, err)
	}

	err = s.store.InStageTx(ctx, ko.ID, func(ctx context.Context, tx repositories.Store) error {
		if err := syncStageMatches(ctx, tx, ko, matches, force); err != nil {
			return err
		}
		if !force {
			return nil
		}
		_, err := propagateFinished(ctx, tx, ko.ID, s.logger)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "knockout seeded",
		slog.Int64("stage_id", ko.ID), slog.Int64("source_stage_id", src.ID), slog.Bool("early", allowEarly), slog.Int("matches", len(matches)))
	emit(ctx, s.notifier, s.logger, notify.Event{
		Type:         notify.EventMatchesUpdated,
		TournamentID: ko.TournamentID,
		StageID:      ko.ID,
		Payload:      matches,
	})
	return matches, nil
}

// checkCompletion marks the tournament completed once every stage has matches
// and all of them are finished.
func (s *progressionService) checkCompletion(ctx context.Context, tournamentID int64) (bool, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return false, handleRepositoryError(err)
	}
	stages, err := s.store.ListStages(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	if len(stages) == 0 {
		return false, nil
	}

	var all []*models.Match
	for _, st := range stages {
		matches, err := s.store.ListMatches(ctx, st.ID, nil)
		if err != nil {
			return false, err
		}
		if len(matches) == 0 {
			return false, nil
		}
		for _, m := range matches {
			if !m.Finished() {
				return false, nil
			}
		}
		all = append(all, matches...)
	}
	if t.Completed {
		return true, nil
	}

	if err := s.store.SetTournamentCompleted(ctx, tournamentID, true); err != nil {
		return false, fmt.Errorf("failed to mark tournament %d completed: %w", tournamentID, err)
	}
	t.Completed = true
	s.logger.InfoContext(ctx, "tournament completed", slog.Int64("tournament_id", tournamentID))
	emit(ctx, s.notifier, s.logger, notify.Event{
		Type:         notify.EventTournamentCompleted,
		TournamentID: tournamentID,
		Payload:      t,
	})
	s.archive(ctx, *t, stages, all)
	return true, nil
}

func (s *progressionService) archive(ctx context.Context, t models.Tournament, stages []models.Stage, matches []*models.Match) {
	if s.archiver == nil {
		return
	}
	snapshot := storage.TournamentSnapshot{Tournament: t, Stages: stages, Matches: matches}
	for _, st := range stages {
		rows, err := s.store.ListStandings(ctx, st.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "snapshot without standings", slog.Int64("stage_id", st.ID), slog.Any("error", err))
			continue
		}
		snapshot.Standings = append(snapshot.Standings, rows...)
	}
	result, err := s.archiver.Archive(ctx, snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to archive tournament", slog.Int64("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "tournament archived", slog.Int64("tournament_id", t.ID), slog.String("location", result.Location))
}
