package brackets

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/fixture-engine/models"
)

func TestGroupSlotsIgnoresGaps(t *testing.T) {
	mappings := []models.IntakeMapping{
		{TargetStageID: 2, GroupIndex: 0, SlotIndex: 5},
		{TargetStageID: 2, GroupIndex: 0, SlotIndex: 2},
		{TargetStageID: 2, GroupIndex: 0, SlotIndex: 5},
		{TargetStageID: 2, GroupIndex: 1, SlotIndex: 1},
		{TargetStageID: 9, GroupIndex: 0, SlotIndex: 7},
	}
	slots := GroupSlots(mappings, 2)
	if len(slots[0]) != 2 || slots[0][0] != 2 || slots[0][1] != 5 {
		t.Errorf("group 0 slots = %v, want [2 5]", slots[0])
	}
	counts := SlotCounts(mappings, 2)
	if counts[0] != 2 || counts[1] != 1 || len(counts) != 2 {
		t.Errorf("slot counts = %v", counts)
	}
}

func TestNormalizeSlots(t *testing.T) {
	in := []models.IntakeMapping{
		{ID: 1, TargetStageID: 2, GroupIndex: 0, SlotIndex: 9},
		{ID: 2, TargetStageID: 2, GroupIndex: 0, SlotIndex: 2},
		{ID: 3, TargetStageID: 2, GroupIndex: 0, SlotIndex: 5},
		{ID: 4, TargetStageID: 2, GroupIndex: 0, SlotIndex: 5},
		{ID: 5, TargetStageID: 2, GroupIndex: 1, SlotIndex: 4},
	}
	out := NormalizeSlots(in)
	want := map[int64]int{1: 3, 2: 1, 3: 2, 4: 2, 5: 1}
	for _, m := range out {
		if m.SlotIndex != want[m.ID] {
			t.Errorf("mapping %d: slot %d, want %d", m.ID, m.SlotIndex, want[m.ID])
		}
	}
	if in[0].SlotIndex != 9 {
		t.Errorf("NormalizeSlots modified its input")
	}
}

func TestSkeletonAndHydrate(t *testing.T) {
	skeleton := Skeleton(4, 1)
	if len(skeleton) != 6 {
		t.Fatalf("skeleton has %d matches, want 6", len(skeleton))
	}
	if !SkeletonMatches(skeleton, 4, 1) {
		t.Fatal("skeleton does not match its own shape")
	}
	if SkeletonMatches(skeleton, 3, 1) {
		t.Error("4-slot skeleton matched a 3-slot layout")
	}

	a, c, d := int64(10), int64(30), int64(40)
	changed := Hydrate(skeleton, []*int64{&a, nil, &c, &d}, 1)
	if len(changed) != 6 {
		t.Errorf("first hydration changed %d matches, want 6", len(changed))
	}
	open := 0
	for _, m := range skeleton {
		if m.TeamA == nil || m.TeamB == nil {
			open++
		}
	}
	if open != 3 {
		t.Errorf("%d matches still miss a team, want 3 (the ones of slot 2)", open)
	}

	b := int64(20)
	changed = Hydrate(skeleton, []*int64{&a, &b, &c, &d}, 1)
	if len(changed) != 3 {
		t.Errorf("second hydration changed %d matches, want 3", len(changed))
	}
	if again := Hydrate(skeleton, []*int64{&a, &b, &c, &d}, 1); len(again) != 0 {
		t.Errorf("hydration is not idempotent: %d changes", len(again))
	}
}

func TestHydrateNeverOverwrites(t *testing.T) {
	skeleton := Skeleton(2, 1)
	x, y := int64(1), int64(2)
	Hydrate(skeleton, []*int64{&x, &y}, 1)

	other := int64(99)
	if changed := Hydrate(skeleton, []*int64{&other, &y}, 1); len(changed) != 0 {
		t.Errorf("hydration overwrote a team")
	}
	if *skeleton[0].TeamA != 1 && *skeleton[0].TeamB != 1 {
		t.Errorf("team 1 lost its slot: %+v", skeleton[0])
	}

	done := Skeleton(2, 1)
	done[0].Status = models.StatusFinished
	if changed := Hydrate(done, []*int64{&x, &y}, 1); len(changed) != 0 {
		t.Errorf("finished match was hydrated")
	}
}

func TestValidateIntake(t *testing.T) {
	bracket, err := NewKnockoutGenerator(4).GenerateBracket(context.Background(), GenerateBracketParams{Entrants: teamIDs(1, 2, 3, 4)})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}

	ok := []models.IntakeMapping{
		{SourceStageID: 1, Round: 1, BracketPos: 1, Outcome: models.OutcomeWinner, TargetStageID: 2, GroupIndex: 0, SlotIndex: 1},
		{SourceStageID: 1, Round: 1, BracketPos: 1, Outcome: models.OutcomeLoser, TargetStageID: 2, GroupIndex: 1, SlotIndex: 1},
	}
	if errs, warnings := ValidateIntake(ok, bracket, 2); len(errs) != 0 || len(warnings) != 0 {
		t.Fatalf("valid mappings: errs=%v warnings=%v", errs, warnings)
	}

	bad := []models.IntakeMapping{
		{SourceStageID: 1, Round: 3, BracketPos: 1, Outcome: models.OutcomeWinner, GroupIndex: 0, SlotIndex: 1},
		{SourceStageID: 1, Round: 1, BracketPos: 2, Outcome: models.OutcomeWinner, GroupIndex: 2, SlotIndex: 1},
		{SourceStageID: 1, Round: 1, BracketPos: 2, Outcome: "X", GroupIndex: 0, SlotIndex: 0},
	}
	errs, _ := ValidateIntake(bad, bracket, 2)
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("error %v does not wrap ErrInvalidConfig", err)
		}
	}

	dup := append(ok, models.IntakeMapping{SourceStageID: 1, Round: 1, BracketPos: 1, Outcome: models.OutcomeWinner, GroupIndex: 1, SlotIndex: 2})
	errs, warnings := ValidateIntake(dup, bracket, 2)
	if len(errs) != 0 {
		t.Errorf("duplicate source should not block: %v", errs)
	}
	if len(warnings) != 1 || warnings[0].Code != WarnDuplicateSource {
		t.Errorf("warnings = %v, want one %s", warnings, WarnDuplicateSource)
	}
}
