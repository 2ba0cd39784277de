package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// triggerEventType maps a card trigger condition onto the engine event that
// fires it.
func triggerEventType(kind cards.TriggerKind) (rules.EventType, bool) {
	switch kind {
	case cards.TriggerEntersBattlefield:
		return rules.EventEntersBattlefield, true
	case cards.TriggerDies:
		return rules.EventDies, true
	case cards.TriggerAttacks:
		return rules.EventAttackerDeclared, true
	case cards.TriggerDealtDamage:
		return rules.EventDamagedCreature, true
	case cards.TriggerUpkeep:
		return rules.EventUpkeep, true
	case cards.TriggerCastSpell:
		return rules.EventSpellCast, true
	default:
		return "", false
	}
}

// registerTriggers wires a permanent's triggered abilities into the trigger
// manager. Each registration is keyed by the permanent's instance id so it
// can be torn down when the permanent leaves the battlefield.
func (s *State) registerTriggers(perm *Permanent, def *cards.Definition) {
	for _, ta := range def.Triggered {
		ta := ta
		eventType, ok := triggerEventType(ta.Trigger)
		if !ok {
			continue
		}
		instanceID := perm.Instance.ID
		controllerID := perm.ControllerID
		s.Triggers.Register(rules.AbilityTrigger{
			ID:         uuid.NewString(),
			SourceID:   instanceID,
			Controller: controllerID,
			EventType:  eventType,
			Condition: func(ev rules.Event) bool {
				return s.triggerConditionHolds(ta, instanceID, controllerID, ev)
			},
			Build: func(ev rules.Event) rules.StackItem {
				return rules.StackItem{
					Kind:        rules.StackItemKindTriggered,
					Controller:  controllerID,
					SourceID:    instanceID,
					Description: fmt.Sprintf("%s: %s", def.Name, ta.Text),
					Effects:     ta.Effects,
				}
			},
		})
	}
}

// triggerConditionHolds filters raw events down to the ones a given
// triggered ability actually cares about.
func (s *State) triggerConditionHolds(ta cards.TriggeredAbility, instanceID, controllerID string, ev rules.Event) bool {
	// The source must still be on the battlefield, except for death
	// triggers which fire as the permanent leaves.
	if ta.Trigger != cards.TriggerDies {
		if _, ok := s.Battlefield[instanceID]; !ok {
			return false
		}
	}
	switch ta.Trigger {
	case cards.TriggerEntersBattlefield, cards.TriggerDies, cards.TriggerAttacks, cards.TriggerDealtDamage:
		// Self-referential triggers fire only for their own source.
		return ev.TargetID == instanceID
	case cards.TriggerUpkeep:
		if ta.ControllerOnly {
			return ev.PlayerID == controllerID
		}
		return true
	case cards.TriggerCastSpell:
		if ta.ControllerOnly {
			return ev.Controller == controllerID
		}
		return true
	}
	return false
}
