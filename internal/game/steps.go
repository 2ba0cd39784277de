package game

import (
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// stepForward moves the game exactly one step ahead, clearing mana pools at
// the transition and running the new step's turn-based actions.
func (s *State) stepForward() {
	for _, player := range s.Players {
		player.Pool.Clear()
	}

	wrapping := s.Turn.CurrentStep() == rules.StepEnd
	if wrapping {
		s.endOfTurnCleanup()
	}

	s.Turn.AdvanceStep(s.Opponent(s.ActivePlayer()))
	s.onEnterStep()
}

// skipToStep advances step by step until the target step is current,
// running each intermediate step's turn-based actions on the way.
func (s *State) skipToStep(target rules.Step) {
	for s.Turn.CurrentStep() != target && s.Turn.CurrentStep() != rules.StepEnd {
		s.stepForward()
	}
}

// endOfTurnCleanup runs as the end step completes: damage wears off, the
// land drop resets and until-end-of-turn effects expire.
func (s *State) endOfTurnCleanup() {
	for _, perm := range s.Permanents() {
		perm.Damage = 0
		perm.DeathtouchDamage = false
	}
	for _, player := range s.Players {
		player.LandsPlayed = 0
	}
	s.Combat = newCombatState()
	s.Events.Publish(rules.Event{Type: rules.EventTurnEnded, PlayerID: s.ActivePlayer()})
}

// onEnterStep performs the turn-based actions of the step just entered.
func (s *State) onEnterStep() {
	active := s.ActivePlayer()
	step := s.Turn.CurrentStep()
	s.DeriveAll()
	s.Events.Publish(rules.Event{Type: rules.EventStepChanged, PlayerID: active})

	switch step {
	case rules.StepUntap:
		for _, perm := range s.Permanents() {
			if perm.ControllerID != active {
				continue
			}
			perm.Tapped = false
			perm.SummoningSick = false
		}
		// Upkeep triggers fire here; the reduced turn structure has no
		// separate upkeep step.
		s.Events.Publish(rules.Event{Type: rules.EventUpkeep, PlayerID: active})

	case rules.StepDraw:
		if s.Turn.TurnNumber() == 1 && active == s.Order[0] {
			break
		}
		s.DrawCard(active)

	case rules.StepDeclareAttackers:
		s.Combat = newCombatState()

	case rules.StepDamage:
		s.runCombatDamage()
	}

	s.checkStateBasedActions()
}
