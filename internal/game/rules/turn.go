package rules

import (
	"fmt"
	"strings"
)

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseBeginning Phase = iota
	PhasePrecombatMain
	PhaseCombat
	PhasePostcombatMain
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseBeginning:      "BEGINNING",
	PhasePrecombatMain:  "PRECOMBAT_MAIN",
	PhaseCombat:         "COMBAT",
	PhasePostcombatMain: "POSTCOMBAT_MAIN",
	PhaseEnding:         "ENDING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step represents the individual steps that comprise a turn. The engine
// runs a reduced step set: upkeep triggers fire during untap, and combat
// damage is handled in a single step with two internal sub-steps.
type Step int

const (
	StepUntap Step = iota
	StepDraw
	StepMain1
	StepDeclareAttackers
	StepDeclareBlockers
	StepDamage
	StepMain2
	StepEnd
)

var stepNames = map[Step]string{
	StepUntap:            "UNTAP",
	StepDraw:             "DRAW",
	StepMain1:            "MAIN1",
	StepDeclareAttackers: "DECLARE_ATTACKERS",
	StepDeclareBlockers:  "DECLARE_BLOCKERS",
	StepDamage:           "DAMAGE",
	StepMain2:            "MAIN2",
	StepEnd:              "END",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

type turnEntry struct {
	phase Phase
	step  Step
}

var turnSequence = []turnEntry{
	{PhaseBeginning, StepUntap},
	{PhaseBeginning, StepDraw},
	{PhasePrecombatMain, StepMain1},
	{PhaseCombat, StepDeclareAttackers},
	{PhaseCombat, StepDeclareBlockers},
	{PhaseCombat, StepDamage},
	{PhasePostcombatMain, StepMain2},
	{PhaseEnding, StepEnd},
}

// TurnManager tracks active/priority player, turn progression and the
// consecutive-pass counter driving step advancement.
type TurnManager struct {
	orderIndex     int
	turnNumber     int
	activePlayer   string
	priorityPlayer string
	passes         int
	extraTurns     []string
}

// NewTurnManager creates a turn manager starting at turn 1, untap step,
// with the given player active and holding priority.
func NewTurnManager(activePlayer string) *TurnManager {
	active := strings.TrimSpace(activePlayer)
	return &TurnManager{
		turnNumber:     1,
		activePlayer:   active,
		priorityPlayer: active,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex].phase
}

// CurrentStep returns the step currently in progress.
func (tm *TurnManager) CurrentStep() Step {
	return turnSequence[tm.orderIndex].step
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player whose turn it is.
func (tm *TurnManager) ActivePlayer() string {
	return tm.activePlayer
}

// PriorityPlayer returns the player who currently holds priority.
func (tm *TurnManager) PriorityPlayer() string {
	return tm.priorityPlayer
}

// SetPriority hands priority to the given player.
func (tm *TurnManager) SetPriority(player string) {
	tm.priorityPlayer = strings.TrimSpace(player)
}

// RecordPass increments the consecutive-pass counter and returns the new
// count. Two consecutive passes either resolve the top of the stack or
// advance a step.
func (tm *TurnManager) RecordPass() int {
	tm.passes++
	return tm.passes
}

// ResetPasses clears the consecutive-pass counter. Called for every action
// other than a pass.
func (tm *TurnManager) ResetPasses() {
	tm.passes = 0
}

// Passes returns the current consecutive-pass count.
func (tm *TurnManager) Passes() int {
	return tm.passes
}

// QueueExtraTurn schedules an extra turn for the given player. Extra turns
// are taken before the normal rotation continues.
func (tm *TurnManager) QueueExtraTurn(player string) {
	tm.extraTurns = append(tm.extraTurns, strings.TrimSpace(player))
}

// AdvanceStep advances exactly one step. At the end of the turn structure
// the turn number increments and the active player becomes the next queued
// extra-turn player, or nextActivePlayer otherwise. Priority reverts to the
// active player and the pass counter resets.
func (tm *TurnManager) AdvanceStep(nextActivePlayer string) (Phase, Step) {
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		if len(tm.extraTurns) > 0 {
			tm.activePlayer = tm.extraTurns[0]
			tm.extraTurns = tm.extraTurns[1:]
		} else if next := strings.TrimSpace(nextActivePlayer); next != "" {
			tm.activePlayer = next
		}
	}
	tm.priorityPlayer = tm.activePlayer
	tm.passes = 0
	return tm.CurrentPhase(), tm.CurrentStep()
}

// IsMainStep reports whether the current step is one of the main phases.
func (tm *TurnManager) IsMainStep() bool {
	step := tm.CurrentStep()
	return step == StepMain1 || step == StepMain2
}

// SkipToStep advances steps until the given step is current. Used by the
// skip-combat and skip-main-2 actions; it never crosses a turn boundary.
func (tm *TurnManager) SkipToStep(target Step, nextActivePlayer string) (Phase, Step) {
	for tm.CurrentStep() != target && tm.orderIndex < len(turnSequence)-1 {
		tm.AdvanceStep(nextActivePlayer)
	}
	return tm.CurrentPhase(), tm.CurrentStep()
}
