package game

import (
	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/effects"
)

// DeriveAll recomputes the derived characteristics of every permanent:
// base card stats, then every active static ability, then every unexpired
// temporary effect, then counters. The fold runs in battlefield entry order
// and applies each source's modifiers in definition order — a deliberate
// single-pass simplification of full dependency/timestamp layering.
func (s *State) DeriveAll() {
	s.expireTemporaryEffects()

	s.derived = make(map[string]*effects.Snapshot, len(s.Battlefield))
	for _, perm := range s.Permanents() {
		def := s.Definition(perm.Instance)
		s.derived[perm.Instance.ID] = effects.NewSnapshot(perm.Instance.ID, def, perm.ControllerID)
	}

	// Static abilities from every battlefield source.
	for _, source := range s.Permanents() {
		def := s.Definition(source.Instance)
		for i := range def.Static {
			static := &def.Static[i]
			if !s.staticConditionHolds(source, static) {
				continue
			}
			mod, ok := staticModifier(static)
			if !ok {
				continue
			}
			for _, target := range s.Permanents() {
				snap := s.derived[target.Instance.ID]
				if s.staticApplies(source, static, target, snap) {
					snap.Apply(mod)
				}
			}
		}
	}

	// Temporary effects.
	for _, te := range s.Temps {
		if snap, ok := s.derived[te.AffectsID]; ok {
			snap.Apply(te.Modifier)
		}
	}

	// Counters last.
	for _, perm := range s.Permanents() {
		power, toughness := perm.Counters.PowerToughnessDelta()
		if power != 0 || toughness != 0 {
			s.derived[perm.Instance.ID].Apply(effects.Modifier{Power: power, Toughness: toughness})
		}
	}
}

// Derived returns the current snapshot for a permanent. DeriveAll must have
// run since the last mutation.
func (s *State) Derived(instanceID string) *effects.Snapshot {
	return s.derived[instanceID]
}

// staticConditionHolds checks the gating condition of a static ability.
func (s *State) staticConditionHolds(source *Permanent, static *cards.StaticAbility) bool {
	if static.RequiresSubtype == "" {
		return true
	}
	for _, perm := range s.Permanents() {
		if perm.ControllerID != source.ControllerID {
			continue
		}
		if s.Definition(perm.Instance).HasSubtype(static.RequiresSubtype) {
			return true
		}
	}
	return false
}

// staticApplies decides whether the static ability of source affects target.
// The check uses the target's base definition for selector matching, so an
// order-dependent cascade of type-changing effects cannot occur; this is
// part of the documented single-pass approximation.
func (s *State) staticApplies(source *Permanent, static *cards.StaticAbility, target *Permanent, snap *effects.Snapshot) bool {
	switch static.Scope {
	case cards.ScopeSelf:
		// Self-scoped statics on an attached aura or equipment affect
		// the host, not the attachment.
		affected := source.Instance.ID
		if source.AttachedTo != "" {
			affected = source.AttachedTo
		}
		if target.Instance.ID != affected {
			return false
		}
	case cards.ScopeYourCreatures:
		if target.ControllerID != source.ControllerID || !snap.IsCreature() {
			return false
		}
	case cards.ScopeOpponentCreatures:
		if target.ControllerID == source.ControllerID || !snap.IsCreature() {
			return false
		}
	case cards.ScopeAllCreatures:
		if !snap.IsCreature() {
			return false
		}
	default:
		return false
	}
	if static.Filter != nil {
		def := s.Definition(target.Instance)
		for _, t := range static.Filter.Types {
			if !def.HasType(t) {
				return false
			}
		}
		for _, sub := range static.Filter.Subtypes {
			if !def.HasSubtype(sub) {
				return false
			}
		}
		for _, k := range static.Filter.Keywords {
			if !snap.HasKeyword(k) {
				return false
			}
		}
	}
	return true
}

// staticModifier translates a static ability into a snapshot modifier.
// Cost reductions do not contribute to derived state and return false.
func staticModifier(static *cards.StaticAbility) (effects.Modifier, bool) {
	switch static.Kind {
	case cards.StaticPTBoost:
		return effects.Modifier{Power: static.Power, Toughness: static.Toughness}, true
	case cards.StaticGrantKeyword:
		return effects.Modifier{Grant: []cards.Keyword{static.Keyword}}, true
	case cards.StaticCannotAttack:
		return effects.Modifier{CannotAttack: true}, true
	case cards.StaticMustAttack:
		return effects.Modifier{MustAttack: true}, true
	case cards.StaticMustBeBlockedByAll:
		return effects.Modifier{MustBeBlockedByAll: true}, true
	case cards.StaticPreventCombatDamage:
		return effects.Modifier{PreventCombatDamage: true}, true
	case cards.StaticAssignAsUnblocked:
		return effects.Modifier{AssignAsUnblocked: true}, true
	default:
		return effects.Modifier{}, false
	}
}

// CostReduction sums the generic-cost reductions that the player's static
// abilities grant to a spell with the given definition.
func (s *State) CostReduction(playerID string, def *cards.Definition) int {
	total := 0
	for _, perm := range s.Permanents() {
		if perm.ControllerID != playerID {
			continue
		}
		srcDef := s.Definition(perm.Instance)
		for i := range srcDef.Static {
			static := &srcDef.Static[i]
			if static.Kind != cards.StaticCostReduction {
				continue
			}
			if !s.staticConditionHolds(perm, static) {
				continue
			}
			if matchesTags(def, static.MatchTags) {
				total += static.Reduction
			}
		}
	}
	return total
}

// matchesTags reports whether the definition's type or subtype set
// intersects the tag list. An empty tag list matches every spell.
func matchesTags(def *cards.Definition, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if def.HasType(cards.Type(tag)) || def.HasSubtype(tag) {
			return true
		}
	}
	return false
}
