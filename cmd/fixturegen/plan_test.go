package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cupPlan = `
tournament:
  id: 5
  name: Весенний кубок
seed: 7
stages:
  - id: 1
    kind: league
    name: Лига
    config:
      double_round: true
    participants:
      - {team: 10, seed: 1}
      - {team: 20, seed: 2}
      - {team: 30, seed: 3}
      - {team: 40, seed: 4}
  - id: 2
    kind: knockout
    name: Плей-офф
    config:
      source_stage_id: 1
      bracket_size: 4
`

func TestDecodePlan(t *testing.T) {
	plan, err := decodePlan(strings.NewReader(cupPlan))
	if err != nil {
		t.Fatalf("decodePlan: %v", err)
	}
	if plan.Tournament.ID != 5 || plan.Seed != 7 || len(plan.Stages) != 2 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Stages[1].Ordinal != 2 {
		t.Errorf("ordinal = %d, want 2", plan.Stages[1].Ordinal)
	}
}

func TestDecodePlanRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no stages", "tournament: {id: 1}\n"},
		{"missing id", "stages:\n  - kind: league\n"},
		{"duplicate id", "stages:\n  - {id: 1, kind: league}\n  - {id: 1, kind: knockout}\n"},
		{"unknown kind", "stages:\n  - {id: 1, kind: swiss}\n"},
		{"unknown field", "stages:\n  - {id: 1, kind: league, colour: red}\n"},
		{"group out of range", "stages:\n  - id: 1\n    kind: groups\n    groups: [A]\n    participants:\n      - {team: 1, group: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodePlan(strings.NewReader(tt.yaml)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func writePlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(cupPlan), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--plan", writePlan(t), "--format", "json"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v (stderr: %s)", err, stderr.String())
	}

	var out output
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Report == nil || len(out.Report.Stages) != 2 {
		t.Fatalf("report = %+v", out.Report)
	}
	if got := len(out.Matches[1]); got != 12 {
		t.Errorf("league matches = %d, want 12", got)
	}
	if got := len(out.Matches[2]); got != 3 {
		t.Errorf("knockout matches = %d, want 3", got)
	}
	if got := len(out.Standings[1]); got != 4 {
		t.Errorf("standings rows = %d, want 4", got)
	}
	if _, ok := out.Standings[2]; ok {
		t.Error("knockout stage has standings")
	}
}

func TestRunTable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-p", writePlan(t)}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := stdout.String()
	for _, want := range []string{"== Лига [1] ==", "== Плей-офф [2] ==", "R2P1", "TBD"} {
		if !strings.Contains(text, want) {
			t.Errorf("table output lacks %q:\n%s", want, text)
		}
	}
}

func TestRunFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); err == nil {
		t.Error("missing --plan accepted")
	}
	if err := run([]string{"-p", "x.yaml", "-f", "xml"}, &stdout, &stderr); err == nil {
		t.Error("unknown format accepted")
	}
	if err := run([]string{"--help"}, &stdout, &stderr); err != nil {
		t.Errorf("--help returned %v", err)
	}
}
