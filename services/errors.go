package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/fixture-engine/brackets"
	"github.com/Dosada05/fixture-engine/repositories"
)

// Общие ошибки, используемые сервисами и маппингом HTTP.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Ошибки результата матча
	ErrInvalidResult        = errors.New("invalid match result")
	ErrDrawNotAllowed       = errors.New("draws are not allowed in this stage")
	ErrTeamsNotResolved     = errors.New("match teams are not resolved yet")
	ErrMatchAlreadyFinished = errors.New("match is already finished with a different result")
	ErrMatchNotFinished     = errors.New("match is not finished")

	// Ошибки генерации и посева
	ErrStageStarted     = errors.New("stage already has finished matches")
	ErrSourceIncomplete = errors.New("source stage is not complete")
	ErrNotKnockoutStage = errors.New("stage is not a knockout stage")
	ErrNotGroupsStage   = errors.New("stage is not a groups stage")
	ErrConfiguration    = errors.New("stage configuration error")
)

// ConfigurationError blocks generation of one stage; other stages proceed.
type ConfigurationError struct {
	StageID int64
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("stage %d: %s", e.StageID, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// ValidationWarning is reported to the editor but never blocks an operation.
type ValidationWarning struct {
	StageID int64  `json:"stage_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toValidationWarnings(stageID int64, warnings []brackets.Warning) []ValidationWarning {
	out := make([]ValidationWarning, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, ValidationWarning{StageID: stageID, Code: w.Code, Message: w.Message})
	}
	return out
}

// asConfigurationError wraps generator configuration failures; other errors pass through.
func asConfigurationError(stageID int64, err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return err
	}
	if errors.Is(err, brackets.ErrInvalidConfig) || errors.Is(err, brackets.ErrNotEnoughEntrants) || errors.Is(err, brackets.ErrNotPowerOfTwo) {
		return &ConfigurationError{StageID: stageID, Reason: err.Error()}
	}
	return err
}

// handleRepositoryError переводит ошибки репозитория в ошибки сервиса.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrStageNotFound):
		return ErrStageNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	}
	return err
}
