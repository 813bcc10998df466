package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Dosada05/fixture-engine/brackets"
	"github.com/Dosada05/fixture-engine/models"
	"github.com/Dosada05/fixture-engine/notify"
	"github.com/Dosada05/fixture-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type StageReport struct {
	StageID  int64               `json:"stage_id"`
	Kind     models.StageKind    `json:"kind"`
	Matches  int                 `json:"matches"`
	Skipped  bool                `json:"skipped"`
	Error    string              `json:"error,omitempty"`
	Err      error               `json:"-"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
}

type GenerationReport struct {
	TournamentID int64         `json:"tournament_id"`
	Stages       []StageReport `json:"stages"`
}

type IntakeReport struct {
	StageID  int64                  `json:"stage_id"`
	Errors   []string               `json:"errors"`
	Warnings []ValidationWarning    `json:"warnings"`
	Mappings []models.IntakeMapping `json:"mappings"` // с нормализованными слотами
}

type FixtureService interface {
	// GenerateTournament generates and stores the matches of every stage.
	// Stages that already have finished matches are skipped unless force is set.
	GenerateTournament(ctx context.Context, tournamentID int64, force bool) (*GenerationReport, error)
	ValidateIntake(ctx context.Context, stageID int64) (*IntakeReport, error)
	ListStageMatches(ctx context.Context, stageID int64) ([]*models.Match, error)
	ListStandings(ctx context.Context, stageID int64) ([]models.Standing, error)
}

type fixtureService struct {
	store    repositories.Store
	notifier notify.Notifier
	logger   *slog.Logger
	seed     uint64
}

// NewFixtureService creates the generation service. seed makes shuffled
// schedules reproducible, 0 means a new seed on every run.
func NewFixtureService(store repositories.Store, notifier notify.Notifier, logger *slog.Logger, seed uint64) FixtureService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &fixtureService{store: store, notifier: notifier, logger: logger, seed: seed}
}

func (s *fixtureService) loadStagePlan(ctx context.Context, stage models.Stage) (brackets.StagePlan, error) {
	plan := brackets.StagePlan{Stage: stage}
	var err error
	if plan.Groups, err = s.store.ListGroups(ctx, stage.ID); err != nil {
		return plan, fmt.Errorf("failed to list groups of stage %d: %w", stage.ID, err)
	}
	if plan.Participants, err = s.store.ListParticipants(ctx, stage.ID, nil); err != nil {
		return plan, fmt.Errorf("failed to list participants of stage %d: %w", stage.ID, err)
	}
	if stage.Kind == models.StageGroups {
		if plan.Intake, err = stageIntake(ctx, s.store, stage); err != nil {
			return plan, err
		}
	}
	if stage.Kind.RoundRobin() {
		if plan.Standings, err = s.store.ListStandings(ctx, stage.ID); err != nil {
			return plan, fmt.Errorf("failed to list standings of stage %d: %w", stage.ID, err)
		}
	}
	return plan, nil
}

func (s *fixtureService) GenerateTournament(ctx context.Context, tournamentID int64, force bool) (*GenerationReport, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	stages, err := s.store.ListStages(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages of tournament %d: %w", tournamentID, err)
	}

	plans := make([]brackets.StagePlan, len(stages))
	g, gCtx := errgroup.WithContext(ctx)
	for i := range stages {
		i := i
		g.Go(func() error {
			plan, err := s.loadStagePlan(gCtx, stages[i])
			if err != nil {
				return err
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results, err := brackets.GenerateFixtures(ctx, brackets.TournamentPlan{
		TournamentID: tournamentID,
		Stages:       plans,
		Seed:         s.seed,
	})
	if err != nil {
		return nil, err
	}

	planByID := make(map[int64]brackets.StagePlan, len(plans))
	for _, p := range plans {
		planByID[p.Stage.ID] = p
	}
	generated := make(map[int64][]*models.Match, len(results))
	for _, r := range results {
		generated[r.StageID] = r.Matches
	}

	report := &GenerationReport{TournamentID: tournamentID}
	for _, res := range results {
		plan := planByID[res.StageID]
		stage := plan.Stage
		sr := StageReport{StageID: stage.ID, Kind: stage.Kind, Warnings: toValidationWarnings(stage.ID, res.Warnings)}

		genErr := asConfigurationError(stage.ID, res.Err)
		if genErr == nil && len(plan.Intake) > 0 {
			errs, warnings, err := s.checkIntake(ctx, plan.Intake, len(plan.Groups), generated)
			if err != nil {
				return nil, err
			}
			sr.Warnings = append(sr.Warnings, toValidationWarnings(stage.ID, warnings)...)
			if len(errs) > 0 {
				genErr = &ConfigurationError{StageID: stage.ID, Reason: joinErrors(errs)}
			}
		}
		if genErr != nil {
			sr.Skipped, sr.Err, sr.Error = true, genErr, genErr.Error()
			s.logger.WarnContext(ctx, "stage generation refused", slog.Int64("stage_id", stage.ID), slog.Any("error", genErr))
			report.Stages = append(report.Stages, sr)
			continue
		}

		err := s.store.InStageTx(ctx, stage.ID, func(ctx context.Context, tx repositories.Store) error {
			if err := syncStageMatches(ctx, tx, stage, res.Matches, force); err != nil {
				return err
			}
			if force && stage.Kind == models.StageKnockout {
				if _, err := propagateFinished(ctx, tx, stage.ID, s.logger); err != nil {
					return err
				}
			}
			if len(plan.Intake) > 0 {
				if err := persistDeclaredIntake(ctx, tx, stage, plan.Intake); err != nil {
					return err
				}
				_, warnings, err := hydrateStage(ctx, tx, stage, s.logger)
				if err != nil {
					return err
				}
				sr.Warnings = append(sr.Warnings, toValidationWarnings(stage.ID, warnings)...)
			}
			if stage.Kind.RoundRobin() {
				if _, err := recomputeStandings(ctx, tx, stage); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			sr.Skipped, sr.Err, sr.Error = true, err, err.Error()
			level := slog.LevelError
			if errors.Is(err, ErrStageStarted) {
				level = slog.LevelInfo
			}
			s.logger.Log(ctx, level, "stage matches not saved", slog.Int64("stage_id", stage.ID), slog.Any("error", err))
			report.Stages = append(report.Stages, sr)
			continue
		}

		sr.Matches = len(res.Matches)
		report.Stages = append(report.Stages, sr)
		s.logger.InfoContext(ctx, "stage fixtures generated",
			slog.Int64("stage_id", stage.ID), slog.String("kind", string(stage.Kind)), slog.Int("matches", sr.Matches))
		emit(ctx, s.notifier, s.logger, notify.Event{
			Type:         notify.EventMatchesUpdated,
			TournamentID: tournamentID,
			StageID:      stage.ID,
			Payload:      res.Matches,
		})
	}
	return report, nil
}

// persistDeclaredIntake stores the intake mappings declared in the stage
// config the first time the stage is generated.
func persistDeclaredIntake(ctx context.Context, tx repositories.Store, stage models.Stage, mappings []models.IntakeMapping) error {
	stored, err := tx.ListIntakeByTarget(ctx, stage.ID)
	if err != nil {
		return fmt.Errorf("failed to list intake of stage %d: %w", stage.ID, err)
	}
	if len(stored) > 0 {
		return nil
	}
	for _, m := range brackets.NormalizeSlots(mappings) {
		m.ID = 0
		m.TargetStageID = stage.ID
		if err := tx.InsertIntake(ctx, &m); err != nil {
			return fmt.Errorf("failed to store intake mapping %s: %w", m.SourceCoord(), err)
		}
	}
	return nil
}

// checkIntake validates mappings against their source brackets, preferring
// the matches generated in this run over stored ones.
func (s *fixtureService) checkIntake(ctx context.Context, mappings []models.IntakeMapping, groupCount int, generated map[int64][]*models.Match) ([]error, []brackets.Warning, error) {
	bySource := make(map[int64][]models.IntakeMapping)
	for _, m := range mappings {
		bySource[m.SourceStageID] = append(bySource[m.SourceStageID], m)
	}
	sources := make([]int64, 0, len(bySource))
	for id := range bySource {
		sources = append(sources, id)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	var errs []error
	var warnings []brackets.Warning
	for _, sourceID := range sources {
		bracket, ok := generated[sourceID]
		if !ok {
			var err error
			bracket, err = s.store.ListMatches(ctx, sourceID, nil)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to list matches of intake source %d: %w", sourceID, err)
			}
		}
		e, w := brackets.ValidateIntake(bySource[sourceID], bracket, groupCount)
		errs = append(errs, e...)
		warnings = append(warnings, w...)
	}
	return errs, warnings, nil
}

func joinErrors(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

func (s *fixtureService) ValidateIntake(ctx context.Context, stageID int64) (*IntakeReport, error) {
	stage, err := s.store.GetStage(ctx, stageID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if stage.Kind != models.StageGroups {
		return nil, fmt.Errorf("%w: stage %d is %s", ErrNotGroupsStage, stageID, stage.Kind)
	}
	mappings, err := stageIntake(ctx, s.store, *stage)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroups(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of stage %d: %w", stageID, err)
	}

	report := &IntakeReport{
		StageID:  stageID,
		Errors:   []string{},
		Warnings: []ValidationWarning{},
		Mappings: brackets.NormalizeSlots(mappings),
	}

	checked := make(map[int64]bool)
	for _, m := range mappings {
		if checked[m.SourceStageID] {
			continue
		}
		checked[m.SourceStageID] = true
		src, err := s.store.GetStage(ctx, m.SourceStageID)
		switch {
		case errors.Is(err, repositories.ErrStageNotFound):
			report.Errors = append(report.Errors, fmt.Sprintf("intake source stage %d does not exist", m.SourceStageID))
		case err != nil:
			return nil, err
		case src.Kind != models.StageKnockout:
			report.Errors = append(report.Errors, fmt.Sprintf("intake source stage %d is %s, not knockout", src.ID, src.Kind))
		case src.Ordinal >= stage.Ordinal:
			report.Errors = append(report.Errors, fmt.Sprintf("intake source stage %d is not earlier than stage %d", src.ID, stageID))
		}
	}

	errs, warnings, err := s.checkIntake(ctx, mappings, len(groups), nil)
	if err != nil {
		return nil, err
	}
	for _, e := range errs {
		report.Errors = append(report.Errors, e.Error())
	}
	report.Warnings = append(report.Warnings, toValidationWarnings(stageID, warnings)...)
	return report, nil
}

func (s *fixtureService) ListStageMatches(ctx context.Context, stageID int64) ([]*models.Match, error) {
	if _, err := s.store.GetStage(ctx, stageID); err != nil {
		return nil, handleRepositoryError(err)
	}
	matches, err := s.store.ListMatches(ctx, stageID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of stage %d: %w", stageID, err)
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}

func (s *fixtureService) ListStandings(ctx context.Context, stageID int64) ([]models.Standing, error) {
	if _, err := s.store.GetStage(ctx, stageID); err != nil {
		return nil, handleRepositoryError(err)
	}
	standings, err := s.store.ListStandings(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings of stage %d: %w", stageID, err)
	}
	if standings == nil {
		return []models.Standing{}, nil
	}
	return standings, nil
}
