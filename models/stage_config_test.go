package models

import (
	"encoding/json"
	"testing"
)

func TestParseStageConfigAliases(t *testing.T) {
	cfg, err := ParseStageConfig(5, map[string]any{
		"γύροι":          "2",
		"ανακάτεμα":      "ναι",
		"ισοπαλίες":      false,
		"διασταύρωση":    "a1 - b1",
		"προκρίνονται":   float64(2),
		"εισαγωγή_από":   3,
		"μέγεθος_ταμπλό": 8,
	})
	if err != nil {
		t.Fatalf("ParseStageConfig: %v", err)
	}
	if cfg.Rounds() != 2 || !cfg.Shuffle {
		t.Errorf("rounds=%d shuffle=%v", cfg.Rounds(), cfg.Shuffle)
	}
	if cfg.DrawsAllowed(StageGroups) {
		t.Error("draws should be disabled")
	}
	if cfg.Cross() != CrossA1B1 {
		t.Errorf("cross = %s, want %s", cfg.Cross(), CrossA1B1)
	}
	if cfg.AdvancersPerGroup != 2 || cfg.BracketSize != 8 {
		t.Errorf("advancers=%d bracket=%d", cfg.AdvancersPerGroup, cfg.BracketSize)
	}
	if cfg.IntakeSourceStageID == nil || *cfg.IntakeSourceStageID != 3 {
		t.Errorf("intake source = %v, want 3", cfg.IntakeSourceStageID)
	}
}

func TestParseStageConfigDefaults(t *testing.T) {
	cfg, err := ParseStageConfig(1, nil)
	if err != nil {
		t.Fatalf("ParseStageConfig: %v", err)
	}
	if cfg.Rounds() != 1 {
		t.Errorf("default rounds = %d, want 1", cfg.Rounds())
	}
	if !cfg.DrawsAllowed(StageLeague) {
		t.Error("league draws should default to allowed")
	}
	if cfg.DrawsAllowed(StageKnockout) {
		t.Error("knockout never allows draws")
	}
	if cfg.Cross() != CrossA1B2 {
		t.Errorf("default cross = %s", cfg.Cross())
	}

	double, err := ParseStageConfig(1, map[string]any{"double_round": true})
	if err != nil {
		t.Fatalf("ParseStageConfig: %v", err)
	}
	if double.Rounds() != 2 {
		t.Errorf("double_round gives %d rounds, want 2", double.Rounds())
	}
}

func TestParseStageConfigIntake(t *testing.T) {
	cfg, err := ParseStageConfig(9, map[string]any{
		"intake_from": 4,
		"intake": []any{
			map[string]any{"round": 1, "position": 2, "outcome": "loser", "group": 1, "slot": 3},
			map[string]any{"source_stage": 6, "γύρος": 2, "θέση": 1, "όμιλος": 0, "υποδοχή": 1},
		},
	})
	if err != nil {
		t.Fatalf("ParseStageConfig: %v", err)
	}
	if len(cfg.Intake) != 2 {
		t.Fatalf("got %d mappings, want 2", len(cfg.Intake))
	}
	first := cfg.Intake[0]
	want := IntakeMapping{SourceStageID: 4, Round: 1, BracketPos: 2, Outcome: OutcomeLoser, TargetStageID: 9, GroupIndex: 1, SlotIndex: 3}
	if first != want {
		t.Errorf("first mapping = %+v, want %+v", first, want)
	}
	second := cfg.Intake[1]
	if second.SourceStageID != 6 || second.Outcome != OutcomeWinner || second.Round != 2 {
		t.Errorf("second mapping = %+v", second)
	}
}

func TestParseStageConfigRejectsGarbage(t *testing.T) {
	bad := []map[string]any{
		{"rounds": "two"},
		{"semi_cross": "A2-B3"},
		{"allow_draws": "maybe"},
		{"matchday_cap": 1.5},
		{"intake": "all"},
		{"intake": []any{map[string]any{"outcome": "draw"}}},
	}
	for _, raw := range bad {
		if _, err := ParseStageConfig(1, raw); err == nil {
			t.Errorf("ParseStageConfig(%v) accepted invalid input", raw)
		}
	}
}

func TestStageConfigJSONRoundTrip(t *testing.T) {
	yes := true
	src := StageConfig{RoundsPerOpponent: 2, AllowDraws: &yes, SemiCross: CrossA1B1, AdvancersPerGroup: 2}
	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got StageConfig
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.RoundsPerOpponent != 2 || got.AllowDraws == nil || !*got.AllowDraws || got.Cross() != CrossA1B1 {
		t.Errorf("round trip lost fields: %+v", got)
	}

	var legacy StageConfig
	if err := json.Unmarshal([]byte(`{"legs": 3, "preview": "yes"}`), &legacy); err != nil {
		t.Fatalf("Unmarshal legacy: %v", err)
	}
	if legacy.Rounds() != 3 || !legacy.AllowEarly {
		t.Errorf("legacy keys not understood: %+v", legacy)
	}
}

func TestGroupLabel(t *testing.T) {
	for index, want := range map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", -1: "?"} {
		if got := GroupLabel(index); got != want {
			t.Errorf("GroupLabel(%d) = %q, want %q", index, got, want)
		}
	}
}

func TestMatchKey(t *testing.T) {
	r, p, md, g := 2, 3, 4, 1
	ko := &Match{StageID: 8, Round: &r, BracketPos: &p}
	if got := ko.Key(); got != "s8/ko/R2P3" {
		t.Errorf("knockout key = %q", got)
	}
	rr := &Match{StageID: 8, GroupIndex: &g, Matchday: &md, Ordinal: 2}
	if got := rr.Key(); got != "s8/g1/md4/o2" {
		t.Errorf("group key = %q", got)
	}
	league := &Match{StageID: 8, Matchday: &md, Ordinal: 1}
	if got := league.Key(); got != "s8/g-1/md4/o1" {
		t.Errorf("league key = %q", got)
	}
}

func TestMatchOutcomeTeam(t *testing.T) {
	a, b := int64(1), int64(2)
	m := &Match{TeamA: &a, TeamB: &b, Status: StatusScheduled, WinnerID: &a}
	if m.OutcomeTeam(OutcomeWinner) != nil {
		t.Error("unfinished match resolved an outcome")
	}
	m.Status = StatusFinished
	if w := m.OutcomeTeam(OutcomeWinner); w == nil || *w != 1 {
		t.Errorf("winner = %v", w)
	}
	if l := m.OutcomeTeam(OutcomeLoser); l == nil || *l != 2 {
		t.Errorf("loser = %v", l)
	}
}
