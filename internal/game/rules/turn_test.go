package rules

import (
	"testing"
)

func TestTurnManagerInitialState(t *testing.T) {
	tm := NewTurnManager("alice")
	if tm.TurnNumber() != 1 {
		t.Errorf("expected turn 1, got %d", tm.TurnNumber())
	}
	if tm.CurrentStep() != StepUntap {
		t.Errorf("expected untap step, got %s", tm.CurrentStep())
	}
	if tm.ActivePlayer() != "alice" || tm.PriorityPlayer() != "alice" {
		t.Error("active player should hold priority at turn start")
	}
}

func TestAdvanceStepSequence(t *testing.T) {
	tm := NewTurnManager("alice")
	expected := []Step{
		StepDraw, StepMain1, StepDeclareAttackers, StepDeclareBlockers,
		StepDamage, StepMain2, StepEnd,
	}
	for _, want := range expected {
		_, got := tm.AdvanceStep("bob")
		if got != want {
			t.Fatalf("expected step %s, got %s", want, got)
		}
	}
	// Wrapping the end of the turn rotates the active player.
	_, step := tm.AdvanceStep("bob")
	if step != StepUntap {
		t.Errorf("expected untap, got %s", step)
	}
	if tm.TurnNumber() != 2 {
		t.Errorf("expected turn 2, got %d", tm.TurnNumber())
	}
	if tm.ActivePlayer() != "bob" {
		t.Errorf("expected bob active, got %s", tm.ActivePlayer())
	}
}

func TestExtraTurnQueue(t *testing.T) {
	tm := NewTurnManager("alice")
	tm.QueueExtraTurn("alice")
	for i := 0; i < len(turnSequence); i++ {
		tm.AdvanceStep("bob")
	}
	if tm.ActivePlayer() != "alice" {
		t.Errorf("extra turn should keep alice active, got %s", tm.ActivePlayer())
	}
	for i := 0; i < len(turnSequence); i++ {
		tm.AdvanceStep("bob")
	}
	if tm.ActivePlayer() != "bob" {
		t.Errorf("expected bob after extra turn, got %s", tm.ActivePlayer())
	}
}

func TestPassCounter(t *testing.T) {
	tm := NewTurnManager("alice")
	if tm.RecordPass() != 1 {
		t.Error("expected pass count 1")
	}
	if tm.RecordPass() != 2 {
		t.Error("expected pass count 2")
	}
	tm.ResetPasses()
	if tm.Passes() != 0 {
		t.Error("expected pass count reset")
	}
	tm.RecordPass()
	tm.AdvanceStep("bob")
	if tm.Passes() != 0 {
		t.Error("advancing a step must reset the pass counter")
	}
}

func TestSkipToStep(t *testing.T) {
	tm := NewTurnManager("alice")
	tm.AdvanceStep("bob") // draw
	tm.AdvanceStep("bob") // main1
	tm.SkipToStep(StepMain2, "bob")
	if tm.CurrentStep() != StepMain2 {
		t.Errorf("expected main2, got %s", tm.CurrentStep())
	}
	if tm.TurnNumber() != 1 {
		t.Error("skip must not cross the turn boundary")
	}
}
