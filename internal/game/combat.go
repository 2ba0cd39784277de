package game

import (
	"fmt"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// attackerEligible reports why a permanent cannot attack, or nil if it can.
func (s *State) attackerEligible(instanceID string) error {
	perm, ok := s.Battlefield[instanceID]
	if !ok {
		return fmt.Errorf("%s is not on the battlefield", instanceID)
	}
	snap := s.Derived(instanceID)
	if snap == nil || !snap.IsCreature() {
		return fmt.Errorf("%s is not a creature", instanceID)
	}
	if perm.ControllerID != s.ActivePlayer() {
		return fmt.Errorf("%s is not controlled by the active player", instanceID)
	}
	if perm.Tapped {
		return fmt.Errorf("%s is tapped", instanceID)
	}
	if perm.SummoningSick && !snap.HasKeyword(cards.KeywordHaste) {
		return fmt.Errorf("%s has summoning sickness", instanceID)
	}
	if snap.HasKeyword(cards.KeywordDefender) {
		return fmt.Errorf("%s has defender", instanceID)
	}
	if snap.CannotAttack {
		return fmt.Errorf("%s cannot attack", instanceID)
	}
	return nil
}

// forcedAttackers returns the creatures that must attack this turn if able.
func (s *State) forcedAttackers() []string {
	var out []string
	for _, perm := range s.Permanents() {
		id := perm.Instance.ID
		snap := s.Derived(id)
		if snap == nil || !snap.MustAttack {
			continue
		}
		if s.attackerEligible(id) == nil {
			out = append(out, id)
		}
	}
	return out
}

// validateAttackers checks a declaration of attackers without mutating.
func (s *State) validateAttackers(attackers []string) error {
	declared := make(map[string]bool, len(attackers))
	for _, id := range attackers {
		if declared[id] {
			return fmt.Errorf("%s declared twice", id)
		}
		declared[id] = true
		if err := s.attackerEligible(id); err != nil {
			return err
		}
	}
	for _, id := range s.forcedAttackers() {
		if !declared[id] {
			return fmt.Errorf("%s must attack this turn", id)
		}
	}
	return nil
}

// declareAttackers commits a validated attacker declaration. Attackers tap
// unless they have vigilance.
func (s *State) declareAttackers(attackers []string) {
	s.Combat.Attackers = append([]string(nil), attackers...)
	s.Combat.AttackersDeclared = true
	for _, id := range attackers {
		perm := s.Battlefield[id]
		snap := s.Derived(id)
		if snap == nil || !snap.HasKeyword(cards.KeywordVigilance) {
			perm.Tapped = true
		}
		s.Events.Publish(rules.Event{
			Type:       rules.EventAttackerDeclared,
			TargetID:   id,
			Controller: perm.ControllerID,
		})
	}
	s.checkStateBasedActions()
}

// blockerEligible reports why a creature cannot block the given attacker.
func (s *State) blockerEligible(blockerID, attackerID string) error {
	perm, ok := s.Battlefield[blockerID]
	if !ok {
		return fmt.Errorf("%s is not on the battlefield", blockerID)
	}
	snap := s.Derived(blockerID)
	if snap == nil || !snap.IsCreature() {
		return fmt.Errorf("%s is not a creature", blockerID)
	}
	if perm.ControllerID != s.Opponent(s.ActivePlayer()) {
		return fmt.Errorf("%s is not controlled by the defending player", blockerID)
	}
	if perm.Tapped {
		return fmt.Errorf("%s is tapped", blockerID)
	}
	attackerSnap := s.Derived(attackerID)
	if attackerSnap == nil {
		return fmt.Errorf("%s is not attacking", attackerID)
	}
	if attackerSnap.HasKeyword(cards.KeywordFlying) &&
		!snap.HasKeyword(cards.KeywordFlying) && !snap.HasKeyword(cards.KeywordReach) {
		return fmt.Errorf("%s cannot block a flyer", blockerID)
	}
	return nil
}

// validateBlockers checks a full blocker declaration without mutating.
// blocks maps attacker id to its blockers in damage assignment order.
func (s *State) validateBlockers(blocks map[string][]string) error {
	if !s.Combat.AttackersDeclared {
		return fmt.Errorf("attackers have not been declared")
	}
	seen := make(map[string]bool)
	for attackerID, blockers := range blocks {
		if !s.Combat.IsAttacking(attackerID) {
			return fmt.Errorf("%s is not attacking", attackerID)
		}
		for _, blockerID := range blockers {
			if seen[blockerID] {
				return fmt.Errorf("%s blocks more than one attacker", blockerID)
			}
			seen[blockerID] = true
			if err := s.blockerEligible(blockerID, attackerID); err != nil {
				return err
			}
		}
		snap := s.Derived(attackerID)
		if snap != nil && snap.HasKeyword(cards.KeywordMenace) && len(blockers) == 1 {
			return fmt.Errorf("%s has menace and cannot be blocked by exactly one creature", attackerID)
		}
	}

	// A lure forces every creature able to block it to do so.
	for _, attackerID := range s.Combat.Attackers {
		snap := s.Derived(attackerID)
		if snap == nil || !snap.MustBeBlockedByAll {
			continue
		}
		for _, perm := range s.Permanents() {
			blockerID := perm.Instance.ID
			if perm.ControllerID != s.Opponent(s.ActivePlayer()) {
				continue
			}
			if s.blockerEligible(blockerID, attackerID) != nil {
				continue
			}
			blocking := false
			for _, b := range blocks[attackerID] {
				if b == blockerID {
					blocking = true
					break
				}
			}
			if !blocking {
				return fmt.Errorf("%s must block %s if able", blockerID, attackerID)
			}
		}
	}
	return nil
}

// declareBlockers commits a validated blocker declaration.
func (s *State) declareBlockers(blocks map[string][]string) {
	s.Combat.Blockers = make(map[string][]string, len(blocks))
	for attackerID, blockers := range blocks {
		s.Combat.Blockers[attackerID] = append([]string(nil), blockers...)
		for _, blockerID := range blockers {
			s.Events.Publish(rules.Event{
				Type:     rules.EventBlockerDeclared,
				TargetID: blockerID,
				SourceID: attackerID,
			})
		}
	}
	s.Combat.BlockersDeclared = true
	s.checkStateBasedActions()
}

// combatAssignment is one pending packet of combat damage. Damage within a
// sub-step is assigned against a frozen view, then applied all at once.
type combatAssignment struct {
	sourceID string
	targetID string
	amount   int
	toPlayer bool
}

// runCombatDamage runs the two combat damage sub-steps. First strike and
// double strike creatures deal damage in the first sub-step; everything
// else, plus double strikers again, deals damage in the second.
func (s *State) runCombatDamage() {
	if len(s.Combat.Attackers) == 0 {
		return
	}
	s.dealCombatSubStep(true)
	s.checkStateBasedActions()
	if s.Over {
		return
	}
	s.dealCombatSubStep(false)
	s.checkStateBasedActions()
}

func (s *State) strikesIn(instanceID string, firstStrikeStep bool) bool {
	snap := s.Derived(instanceID)
	if snap == nil {
		return false
	}
	if firstStrikeStep {
		return snap.HasKeyword(cards.KeywordFirstStrike) || snap.HasKeyword(cards.KeywordDoubleStrike)
	}
	return !snap.HasKeyword(cards.KeywordFirstStrike) || snap.HasKeyword(cards.KeywordDoubleStrike)
}

func (s *State) dealCombatSubStep(firstStrikeStep bool) {
	defender := s.Opponent(s.ActivePlayer())
	var assignments []combatAssignment

	for _, attackerID := range s.Combat.Attackers {
		if _, ok := s.Battlefield[attackerID]; !ok {
			continue
		}
		if !s.strikesIn(attackerID, firstStrikeStep) {
			continue
		}
		snap := s.Derived(attackerID)
		if snap.PreventCombatDamage || snap.Power <= 0 {
			// A zero-power attacker still takes blocker damage below.
		} else {
			assignments = append(assignments, s.assignAttackerDamage(attackerID, defender, snap.Power)...)
		}
	}

	for attackerID, blockers := range s.Combat.Blockers {
		if _, ok := s.Battlefield[attackerID]; !ok {
			continue
		}
		for _, blockerID := range blockers {
			if _, ok := s.Battlefield[blockerID]; !ok {
				continue
			}
			if !s.strikesIn(blockerID, firstStrikeStep) {
				continue
			}
			snap := s.Derived(blockerID)
			if snap.PreventCombatDamage || snap.Power <= 0 {
				continue
			}
			assignments = append(assignments, combatAssignment{
				sourceID: blockerID,
				targetID: attackerID,
				amount:   snap.Power,
			})
		}
	}

	// All damage in a sub-step lands simultaneously.
	for _, a := range assignments {
		if a.toPlayer {
			s.damagePlayer(a.targetID, a.amount, a.sourceID)
		} else {
			s.damageCreature(a.targetID, a.amount, a.sourceID)
		}
	}
}

// assignAttackerDamage distributes an attacker's power across its blockers
// in declaration order, spilling excess onto the defending player with
// trample. Deathtouch makes one damage lethal per blocker.
func (s *State) assignAttackerDamage(attackerID, defender string, power int) []combatAssignment {
	snap := s.Derived(attackerID)
	blockers := s.livingBlockers(attackerID)

	if len(blockers) == 0 || snap.AssignAsUnblocked {
		wasBlocked := len(s.Combat.Blockers[attackerID]) > 0
		if wasBlocked && !snap.AssignAsUnblocked {
			// All blockers died before damage; a blocked attacker
			// without trample deals nothing.
			if !snap.HasKeyword(cards.KeywordTrample) {
				return nil
			}
		}
		return []combatAssignment{{sourceID: attackerID, targetID: defender, amount: power, toPlayer: true}}
	}

	deathtouch := snap.HasKeyword(cards.KeywordDeathtouch)
	trample := snap.HasKeyword(cards.KeywordTrample)
	remaining := power
	var out []combatAssignment

	for i, blockerID := range blockers {
		if remaining <= 0 {
			break
		}
		lethal := s.lethalDamageFor(blockerID)
		if deathtouch && lethal > 1 {
			lethal = 1
		}
		amount := lethal
		if amount > remaining {
			amount = remaining
		}
		last := i == len(blockers)-1
		if last && !trample {
			amount = remaining
		}
		if amount > 0 {
			out = append(out, combatAssignment{sourceID: attackerID, targetID: blockerID, amount: amount})
			remaining -= amount
		}
	}
	if trample && remaining > 0 {
		out = append(out, combatAssignment{sourceID: attackerID, targetID: defender, amount: remaining, toPlayer: true})
	}
	return out
}

// livingBlockers returns the attacker's blockers still on the battlefield,
// in damage assignment order.
func (s *State) livingBlockers(attackerID string) []string {
	var out []string
	for _, blockerID := range s.Combat.Blockers[attackerID] {
		if _, ok := s.Battlefield[blockerID]; ok {
			out = append(out, blockerID)
		}
	}
	return out
}

// lethalDamageFor returns the damage still needed to make marked damage
// lethal for the creature.
func (s *State) lethalDamageFor(instanceID string) int {
	perm := s.Battlefield[instanceID]
	snap := s.Derived(instanceID)
	lethal := snap.Toughness - perm.Damage
	if lethal < 1 {
		lethal = 1
	}
	return lethal
}
