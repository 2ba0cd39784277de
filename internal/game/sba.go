package game

import (
	"fmt"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// destroyPermanent destroys a permanent unless it is indestructible.
// Returns true if the permanent actually left the battlefield.
func (s *State) destroyPermanent(instanceID string) bool {
	perm, ok := s.Battlefield[instanceID]
	if !ok {
		return false
	}
	if snap := s.Derived(instanceID); snap != nil && snap.HasKeyword(cards.KeywordIndestructible) {
		return false
	}
	s.Events.Publish(rules.Event{Type: rules.EventDies, TargetID: instanceID, Controller: perm.ControllerID})
	if inst, ok := s.LeaveBattlefield(instanceID); ok {
		s.MoveToGraveyard(inst)
	}
	s.DeriveAll()
	return true
}

// checkStateBasedActions applies the always-on game rules repeatedly until
// nothing more changes: lethal damage and zero toughness kill creatures,
// orphaned auras fall off, orphaned equipment detaches, and players at zero
// life or with empty libraries lose.
func (s *State) checkStateBasedActions() {
	if s.Over {
		return
	}
	for {
		s.DeriveAll()
		if !s.stateBasedPass() {
			break
		}
		if s.Over {
			return
		}
	}
	s.checkWinConditions()
}

// stateBasedPass performs one sweep and reports whether anything changed.
func (s *State) stateBasedPass() bool {
	changed := false

	for _, perm := range s.Permanents() {
		id := perm.Instance.ID
		snap := s.Derived(id)
		if snap == nil {
			continue
		}
		def := s.Definition(perm.Instance)

		if snap.IsCreature() {
			indestructible := snap.HasKeyword(cards.KeywordIndestructible)
			switch {
			case snap.Toughness <= 0:
				// Zero or less toughness is not destruction; it
				// bypasses indestructible.
				s.Events.Publish(rules.Event{Type: rules.EventDies, TargetID: id, Controller: perm.ControllerID})
				if inst, ok := s.LeaveBattlefield(id); ok {
					s.MoveToGraveyard(inst)
				}
				changed = true
				continue
			case !indestructible && perm.Damage >= snap.Toughness:
				if s.destroyPermanent(id) {
					changed = true
					continue
				}
			case !indestructible && perm.DeathtouchDamage && perm.Damage > 0:
				if s.destroyPermanent(id) {
					changed = true
					continue
				}
			}
		}

		if def.IsAura() {
			host, ok := s.Battlefield[perm.AttachedTo]
			orphaned := perm.AttachedTo == "" || !ok
			if !orphaned && def.AttachTo != nil && !s.permanentMatches(host, def.AttachTo) {
				// The host no longer satisfies the aura's attach
				// requirement.
				orphaned = true
			}
			if orphaned {
				if inst, leftOK := s.LeaveBattlefield(id); leftOK {
					s.MoveToGraveyard(inst)
				}
				changed = true
				continue
			}
		}

		if def.IsEquipment() && perm.AttachedTo != "" {
			if _, ok := s.Battlefield[perm.AttachedTo]; !ok {
				perm.AttachedTo = ""
				changed = true
			}
		}
	}

	if changed {
		s.DeriveAll()
	}
	return changed
}

// checkWinConditions ends the game once a player has lost. Both players
// losing at once is a draw.
func (s *State) checkWinConditions() {
	if s.Over {
		return
	}
	var losers []string
	for _, id := range s.Order {
		player := s.Players[id]
		if player.Life <= 0 || player.Conceded {
			losers = append(losers, id)
		}
	}
	switch len(losers) {
	case 0:
		return
	case 1:
		loser := s.Players[losers[0]]
		reason := fmt.Sprintf("%s is at %d life", loser.Name, loser.Life)
		if loser.Conceded {
			reason = fmt.Sprintf("%s conceded", loser.Name)
		}
		s.endGame(s.Opponent(losers[0]), reason)
	default:
		s.endGame("", "both players lost simultaneously")
	}
}
