package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SemiCross selects the semifinal layout for two groups with two advancers each.
type SemiCross string

const (
	CrossA1B2 SemiCross = "A1-B2" // A1 vs B2, B1 vs A2
	CrossA1B1 SemiCross = "A1-B1" // A1 vs B1, A2 vs B2
)

// StageConfig: канонический набор параметров генератора. Сырые ключи (в том
// числе греческие дубли из редактора) разбираются один раз в ParseStageConfig.
type StageConfig struct {
	RoundsPerOpponent   int             `json:"rounds_per_opponent" yaml:"rounds_per_opponent"`
	Shuffle             bool            `json:"shuffle" yaml:"shuffle"`
	MatchdayCap         int             `json:"matchday_cap,omitempty" yaml:"matchday_cap,omitempty"`
	AllowDraws          *bool           `json:"allow_draws,omitempty" yaml:"allow_draws,omitempty"`
	AdvancersPerGroup   int             `json:"advancers_per_group,omitempty" yaml:"advancers_per_group,omitempty"`
	SemiCross           SemiCross       `json:"semi_cross,omitempty" yaml:"semi_cross,omitempty"`
	SourceStageID       *int64          `json:"source_stage_id,omitempty" yaml:"source_stage_id,omitempty"`
	BracketSize         int             `json:"bracket_size,omitempty" yaml:"bracket_size,omitempty"`
	AllowEarly          bool            `json:"allow_early,omitempty" yaml:"allow_early,omitempty"`
	IntakeSourceStageID *int64          `json:"intake_source_stage_id,omitempty" yaml:"intake_source_stage_id,omitempty"`
	Intake              []IntakeMapping `json:"intake,omitempty" yaml:"intake,omitempty"`
}

// Rounds returns the repeat count, never less than 1.
func (c StageConfig) Rounds() int {
	if c.RoundsPerOpponent < 1 {
		return 1
	}
	return c.RoundsPerOpponent
}

// DrawsAllowed defaults to true for round robin stages and is always false for knockout.
func (c StageConfig) DrawsAllowed(kind StageKind) bool {
	if kind == StageKnockout {
		return false
	}
	if c.AllowDraws == nil {
		return true
	}
	return *c.AllowDraws
}

func (c StageConfig) Cross() SemiCross {
	if c.SemiCross == CrossA1B1 {
		return CrossA1B1
	}
	return CrossA1B2
}

var configAliases = map[string][]string{
	"rounds_per_opponent":    {"rounds_per_opponent", "rounds", "legs", "γύροι"},
	"double_round":           {"double_round", "διπλός_γύρος"},
	"shuffle":                {"shuffle", "random_order", "ανακάτεμα"},
	"matchday_cap":           {"matchday_cap", "max_matchdays", "μέγιστες_αγωνιστικές"},
	"allow_draws":            {"allow_draws", "draws_allowed", "ισοπαλίες"},
	"advancers_per_group":    {"advancers_per_group", "qualifiers_per_group", "προκρίνονται"},
	"semi_cross":             {"semi_cross", "cross", "διασταύρωση"},
	"source_stage_id":        {"source_stage_id", "source_stage", "πηγή"},
	"bracket_size":           {"bracket_size", "standalone_bracket_size", "μέγεθος_ταμπλό"},
	"allow_early":            {"allow_early", "preview", "πρόωρα"},
	"intake_source_stage_id": {"intake_source_stage_id", "intake_from", "εισαγωγή_από"},
	"intake":                 {"intake", "intake_mappings", "αντιστοιχίσεις"},
}

func lookup(raw map[string]any, canonical string) (any, bool) {
	for _, key := range configAliases[canonical] {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// ParseStageConfig resolves a raw configuration bag into a StageConfig.
// stageID is used as the target stage of intake mappings declared in the bag.
func ParseStageConfig(stageID int64, raw map[string]any) (StageConfig, error) {
	var cfg StageConfig
	if raw == nil {
		return cfg, nil
	}

	if v, ok := lookup(raw, "rounds_per_opponent"); ok {
		n, err := asInt(v)
		if err != nil {
			return cfg, fmt.Errorf("rounds_per_opponent: %w", err)
		}
		cfg.RoundsPerOpponent = n
	}
	if v, ok := lookup(raw, "double_round"); ok && cfg.RoundsPerOpponent == 0 {
		b, err := asBool(v)
		if err != nil {
			return cfg, fmt.Errorf("double_round: %w", err)
		}
		if b {
			cfg.RoundsPerOpponent = 2
		} else {
			cfg.RoundsPerOpponent = 1
		}
	}
	if v, ok := lookup(raw, "shuffle"); ok {
		b, err := asBool(v)
		if err != nil {
			return cfg, fmt.Errorf("shuffle: %w", err)
		}
		cfg.Shuffle = b
	}
	if v, ok := lookup(raw, "matchday_cap"); ok {
		n, err := asInt(v)
		if err != nil {
			return cfg, fmt.Errorf("matchday_cap: %w", err)
		}
		cfg.MatchdayCap = n
	}
	if v, ok := lookup(raw, "allow_draws"); ok {
		b, err := asBool(v)
		if err != nil {
			return cfg, fmt.Errorf("allow_draws: %w", err)
		}
		cfg.AllowDraws = &b
	}
	if v, ok := lookup(raw, "advancers_per_group"); ok {
		n, err := asInt(v)
		if err != nil {
			return cfg, fmt.Errorf("advancers_per_group: %w", err)
		}
		cfg.AdvancersPerGroup = n
	}
	if v, ok := lookup(raw, "semi_cross"); ok {
		s, ok := v.(string)
		if !ok {
			return cfg, fmt.Errorf("semi_cross: expected string, got %T", v)
		}
		switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
		case "", "A1-B2", "A1B2", "CROSS":
			cfg.SemiCross = CrossA1B2
		case "A1-B1", "A1B1", "STRAIGHT":
			cfg.SemiCross = CrossA1B1
		default:
			return cfg, fmt.Errorf("semi_cross: unknown value %q", s)
		}
	}
	if v, ok := lookup(raw, "source_stage_id"); ok {
		n, err := asInt(v)
		if err != nil {
			return cfg, fmt.Errorf("source_stage_id: %w", err)
		}
		id := int64(n)
		cfg.SourceStageID = &id
	}
	if v, ok := lookup(raw, "bracket_size"); ok {
		n, err := asInt(v)
		if err != nil {
			return cfg, fmt.Errorf("bracket_size: %w", err)
		}
		cfg.BracketSize = n
	}
	if v, ok := lookup(raw, "allow_early"); ok {
		b, err := asBool(v)
		if err != nil {
			return cfg, fmt.Errorf("allow_early: %w", err)
		}
		cfg.AllowEarly = b
	}
	if v, ok := lookup(raw, "intake_source_stage_id"); ok {
		n, err := asInt(v)
		if err != nil {
			return cfg, fmt.Errorf("intake_source_stage_id: %w", err)
		}
		id := int64(n)
		cfg.IntakeSourceStageID = &id
	}
	if v, ok := lookup(raw, "intake"); ok {
		items, ok := v.([]any)
		if !ok {
			return cfg, fmt.Errorf("intake: expected list, got %T", v)
		}
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return cfg, fmt.Errorf("intake[%d]: expected object, got %T", i, item)
			}
			mapping, err := parseIntakeEntry(stageID, cfg.IntakeSourceStageID, m)
			if err != nil {
				return cfg, fmt.Errorf("intake[%d]: %w", i, err)
			}
			cfg.Intake = append(cfg.Intake, mapping)
		}
	}
	return cfg, nil
}

func parseIntakeEntry(targetStageID int64, defaultSource *int64, raw map[string]any) (IntakeMapping, error) {
	mapping := IntakeMapping{TargetStageID: targetStageID, Outcome: OutcomeWinner}
	if defaultSource != nil {
		mapping.SourceStageID = *defaultSource
	}
	ints := []struct {
		keys []string
		dst  *int
	}{
		{[]string{"round", "γύρος"}, &mapping.Round},
		{[]string{"bracket_pos", "position", "θέση"}, &mapping.BracketPos},
		{[]string{"group_index", "group", "όμιλος"}, &mapping.GroupIndex},
		{[]string{"slot_index", "slot", "υποδοχή"}, &mapping.SlotIndex},
	}
	for _, field := range ints {
		for _, key := range field.keys {
			if v, ok := raw[key]; ok && v != nil {
				n, err := asInt(v)
				if err != nil {
					return mapping, fmt.Errorf("%s: %w", key, err)
				}
				*field.dst = n
				break
			}
		}
	}
	for _, key := range []string{"source_stage_id", "source_stage"} {
		if v, ok := raw[key]; ok && v != nil {
			n, err := asInt(v)
			if err != nil {
				return mapping, fmt.Errorf("%s: %w", key, err)
			}
			mapping.SourceStageID = int64(n)
			break
		}
	}
	for _, key := range []string{"outcome", "αποτέλεσμα"} {
		if v, ok := raw[key]; ok && v != nil {
			s, _ := v.(string)
			switch strings.ToUpper(strings.TrimSpace(s)) {
			case "W", "WIN", "WINNER", "Ν":
				mapping.Outcome = OutcomeWinner
			case "L", "LOSS", "LOSER", "Η":
				mapping.Outcome = OutcomeLoser
			default:
				return mapping, fmt.Errorf("%s: unknown outcome %v", key, v)
			}
			break
		}
	}
	return mapping, nil
}

// UnmarshalJSON accepts any alias spelling stored in the jsonb column.
func (c *StageConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStageConfig(0, raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "1", "ναι":
			return true, nil
		case "false", "no", "0", "όχι", "":
			return false, nil
		}
		return false, fmt.Errorf("expected boolean, got %q", b)
	case int, int64, float64:
		n, err := asInt(b)
		return n != 0, err
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}
