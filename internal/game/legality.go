package game

import (
	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/mana"
	"github.com/arcanarena/arena-server-go/internal/game/targeting"
)

// legalityCap bounds how many target combinations are enumerated per spell
// or ability. Large boards would otherwise explode the surface.
const legalityCap = 200

// LegalActions enumerates every action the player may legally submit right
// now. Every returned action passes Validate; the enumeration and the
// validator never disagree because candidates are filtered through it.
func (s *State) LegalActions(playerID string) []Action {
	if _, ok := s.Players[playerID]; !ok || s.Over {
		return nil
	}

	var candidates []Action
	candidates = append(candidates, Action{Type: ActionConcede, ActorID: playerID})

	switch {
	case s.Pending != nil:
		candidates = append(candidates, s.decisionCandidates(playerID)...)
	default:
		if declType, declPlayer, waiting := s.pendingCombatDeclaration(); waiting {
			if declPlayer == playerID {
				if declType == ActionDeclareAttackers {
					candidates = append(candidates, s.attackerCandidates(playerID)...)
				} else {
					candidates = append(candidates, s.blockerCandidates(playerID)...)
				}
			}
		} else if s.Turn.PriorityPlayer() == playerID {
			candidates = append(candidates, Action{Type: ActionPassPriority, ActorID: playerID})
			candidates = append(candidates, Action{Type: ActionSkipCombat, ActorID: playerID})
			candidates = append(candidates, Action{Type: ActionSkipMain2, ActorID: playerID})
			candidates = append(candidates, s.landCandidates(playerID)...)
			candidates = append(candidates, s.manaCandidates(playerID)...)
			candidates = append(candidates, s.castCandidates(playerID)...)
			candidates = append(candidates, s.activationCandidates(playerID)...)
		}
	}

	out := make([]Action, 0, len(candidates))
	for _, a := range candidates {
		if s.Validate(a) == nil {
			out = append(out, a)
		}
	}
	return out
}

// decisionCandidates enumerates answers to the pending decision: every way
// to pick between MinPicks and MaxPicks options, and every ordering of the
// picks when the decision is order-sensitive, bounded by legalityCap.
func (s *State) decisionCandidates(playerID string) []Action {
	pd := s.Pending
	if pd == nil || pd.PlayerID != playerID {
		return nil
	}
	maxPicks := pd.MaxPicks
	if maxPicks > len(pd.Options) {
		maxPicks = len(pd.Options)
	}
	var out []Action
	for k := pd.MinPicks; k <= maxPicks && len(out) < legalityCap; k++ {
		for _, picked := range chooseSets(pd.Options, k, legalityCap-len(out)) {
			if pd.Ordered && k > 1 {
				for _, ordered := range orderings(picked, legalityCap-len(out)) {
					out = append(out, Action{Type: ActionResolveDecision, ActorID: playerID, Choice: ordered})
				}
				continue
			}
			out = append(out, Action{Type: ActionResolveDecision, ActorID: playerID, Choice: picked})
		}
	}
	return out
}

// attackerCandidates enumerates every subset of the eligible attackers,
// bounded by legalityCap.
func (s *State) attackerCandidates(playerID string) []Action {
	var eligible []string
	for _, perm := range s.Permanents() {
		if perm.ControllerID != playerID {
			continue
		}
		if s.attackerEligible(perm.Instance.ID) == nil {
			eligible = append(eligible, perm.Instance.ID)
		}
	}
	out := []Action{{Type: ActionDeclareAttackers, ActorID: playerID, Attackers: []string{}}}
	for k := 1; k <= len(eligible) && len(out) < legalityCap; k++ {
		for _, subset := range chooseSets(eligible, k, legalityCap-len(out)) {
			out = append(out, Action{Type: ActionDeclareAttackers, ActorID: playerID, Attackers: subset})
		}
	}
	return out
}

// blockerCandidates enumerates block declarations: every way to send each
// able blocker at one of the attackers or hold it back, bounded by
// legalityCap. Combinations breaking menace or forced-block constraints are
// weeded out by the validator.
func (s *State) blockerCandidates(playerID string) []Action {
	type blockOption struct {
		blockerID string
		attackers []string
	}
	var options []blockOption
	for _, perm := range s.Permanents() {
		if perm.ControllerID != playerID {
			continue
		}
		id := perm.Instance.ID
		var able []string
		for _, attackerID := range s.Combat.Attackers {
			if s.blockerEligible(id, attackerID) == nil {
				able = append(able, attackerID)
			}
		}
		if len(able) > 0 {
			options = append(options, blockOption{blockerID: id, attackers: able})
		}
	}

	assignments := []map[string][]string{{}}
	for _, opt := range options {
		var next []map[string][]string
		for _, base := range assignments {
			next = append(next, base)
			for _, attackerID := range opt.attackers {
				if len(next) >= legalityCap {
					break
				}
				extended := make(map[string][]string, len(base)+1)
				for k, v := range base {
					extended[k] = v
				}
				extended[attackerID] = append(append([]string(nil), base[attackerID]...), opt.blockerID)
				next = append(next, extended)
			}
			if len(next) >= legalityCap {
				break
			}
		}
		assignments = next
	}

	out := make([]Action, 0, len(assignments))
	for _, blocks := range assignments {
		out = append(out, Action{Type: ActionDeclareBlockers, ActorID: playerID, Blockers: blocks})
	}
	return out
}

func (s *State) landCandidates(playerID string) []Action {
	var out []Action
	for _, inst := range s.Players[playerID].Hand {
		if s.Definition(inst).HasType(cards.TypeLand) {
			out = append(out, Action{Type: ActionPlayLand, ActorID: playerID, ObjectID: inst.ID})
		}
	}
	return out
}

func (s *State) manaCandidates(playerID string) []Action {
	var out []Action
	for _, perm := range s.Permanents() {
		if perm.ControllerID != playerID {
			continue
		}
		def := s.Definition(perm.Instance)
		for _, ab := range def.Activated {
			if ab.ManaAbility {
				out = append(out, Action{
					Type:      ActionTapForMana,
					ActorID:   playerID,
					ObjectID:  perm.Instance.ID,
					AbilityID: ab.ID,
				})
			}
		}
	}
	return out
}

// castCandidates enumerates castable spells from hand and flashback casts
// from the graveyard, with concrete targets, modes, X values and cost
// payments.
func (s *State) castCandidates(playerID string) []Action {
	player := s.Players[playerID]
	var out []Action

	for _, inst := range player.Hand {
		def := s.Definition(inst)
		if def.HasType(cards.TypeLand) {
			continue
		}
		out = append(out, s.castVariants(playerID, inst, def, false)...)
	}
	for _, inst := range player.Graveyard {
		def := s.Definition(inst)
		if def.Flashback != nil {
			out = append(out, s.castVariants(playerID, inst, def, true)...)
		}
	}
	return out
}

// castVariants expands one card into concrete cast actions: every mode,
// target set, X value and additional-cost payment combination, bounded by
// legalityCap.
func (s *State) castVariants(playerID string, inst *CardInstance, def *cards.Definition, flashback bool) []Action {
	var out []Action
	pool := s.Players[playerID].Pool
	reduction := s.CostReduction(playerID, def)
	payOptions := s.costPayOptions(playerID, inst.ID, def.AdditionalCosts)

	modes := []int{0}
	if len(def.Modes) > 0 {
		modes = modes[:0]
		for m := range def.Modes {
			modes = append(modes, m)
		}
	}

	cost := def.Cost
	if flashback {
		cost = def.Flashback
	}

	for _, m := range modes {
		effs, err := spellEffects(def, m)
		if err != nil {
			continue
		}
		if def.IsAura() {
			spec := cards.TargetSpec{Zone: cards.ZoneBattlefield}
			if def.AttachTo != nil {
				spec.Selector = *def.AttachTo
			}
			effs = []cards.Effect{{Kind: cards.EffectAttach, Target: &spec}}
		}
		for _, targets := range s.targetSets(playerID, effs) {
			for _, pays := range payOptions {
				a := Action{
					Type:           ActionCastSpell,
					ActorID:        playerID,
					ObjectID:       inst.ID,
					Flashback:      flashback,
					AdditionalPays: pays,
					Mode:           m,
					Targets:        targets,
				}
				if cost != nil && cost.X {
					maxX := mana.MaxX(cost, pool, reduction)
					for x := 0; x <= maxX; x++ {
						ax := a
						ax.X = x
						out = append(out, ax)
					}
				} else {
					out = append(out, a)
				}
				if len(out) >= legalityCap {
					return out
				}
			}

			if !flashback {
				for _, alt := range def.Alternates {
					for _, altPays := range s.costPayOptions(playerID, "", alt.ExtraCosts) {
						out = append(out, Action{
							Type:           ActionCastSpell,
							ActorID:        playerID,
							ObjectID:       inst.ID,
							Alternate:      alt.Name,
							AdditionalPays: altPays,
							Mode:           m,
							Targets:        targets,
						})
						if len(out) >= legalityCap {
							return out
						}
					}
				}
			}
		}
	}
	return out
}

// activationCandidates enumerates ability activations with concrete targets
// and cost payments.
func (s *State) activationCandidates(playerID string) []Action {
	var out []Action
	for _, perm := range s.Permanents() {
		if perm.ControllerID != playerID {
			continue
		}
		def := s.Definition(perm.Instance)
		for _, ab := range def.Activated {
			if ab.ManaAbility {
				continue
			}
			payOptions := s.costPayOptions(playerID, perm.Instance.ID, ab.Costs)
			for _, targets := range s.targetSets(playerID, ab.Effects) {
				for _, pays := range payOptions {
					out = append(out, Action{
						Type:           ActionActivateAbility,
						ActorID:        playerID,
						ObjectID:       perm.Instance.ID,
						AbilityID:      ab.ID,
						Targets:        targets,
						AdditionalPays: pays,
					})
					if len(out) >= legalityCap {
						return out
					}
				}
			}
		}
	}
	return out
}

// targetSets enumerates concrete target id lists satisfying an effect
// list's requirements, capped to keep the surface bounded. An effect list
// without targets yields one empty set.
func (s *State) targetSets(actor string, effs []cards.Effect) [][]string {
	specs := targetSpecsOf(effs)
	sets := [][]string{{}}
	for _, spec := range specs {
		filtered := targeting.Filter(s.targetCandidates(spec), spec, actor, s.defendingPlayer())
		combos := targeting.Combinations(filtered, spec)
		if len(combos) == 0 {
			return nil
		}
		var next [][]string
		for _, prefix := range sets {
			for _, combo := range combos {
				merged := append(append([]string(nil), prefix...), combo...)
				next = append(next, merged)
				if len(next) >= legalityCap {
					break
				}
			}
			if len(next) >= legalityCap {
				break
			}
		}
		sets = next
	}
	return sets
}

// costPayOptions enumerates the distinct ways to settle a non-mana cost
// list. Each element is a pays slice indexed parallel to costs; costs that
// need no selection take a nil slot. An empty result means the cost list
// cannot be settled at all.
func (s *State) costPayOptions(playerID, selfID string, costs []cards.Cost) [][][]string {
	if len(costs) == 0 {
		return [][][]string{nil}
	}
	player := s.Players[playerID]
	sets := [][][]string{{}}
	for _, cost := range costs {
		var perCost [][]string
		switch cost.Kind {
		case cards.CostDiscardCards:
			var ids []string
			for _, inst := range player.Hand {
				if inst.ID == selfID {
					continue
				}
				if cost.Filter == nil || s.instanceMatches(inst, cost.Filter) {
					ids = append(ids, inst.ID)
				}
			}
			perCost = chooseSets(ids, cost.Amount, legalityCap)
		case cards.CostSacrificeCreature, cards.CostSacrificeOther:
			amount := cost.Amount
			if amount <= 0 {
				amount = 1
			}
			var ids []string
			for _, perm := range s.Permanents() {
				id := perm.Instance.ID
				if perm.ControllerID != playerID || id == selfID {
					continue
				}
				if cost.Kind == cards.CostSacrificeCreature {
					if snap := s.Derived(id); snap == nil || !snap.IsCreature() {
						continue
					}
				}
				if cost.Filter != nil && !s.permanentMatches(perm, cost.Filter) {
					continue
				}
				ids = append(ids, id)
			}
			perCost = chooseSets(ids, amount, legalityCap)
		default:
			perCost = [][]string{nil}
		}
		if len(perCost) == 0 {
			return nil
		}
		var next [][][]string
		for _, prefix := range sets {
			for _, selection := range perCost {
				merged := append(append([][]string(nil), prefix...), selection)
				next = append(next, merged)
				if len(next) >= legalityCap {
					break
				}
			}
			if len(next) >= legalityCap {
				break
			}
		}
		sets = next
	}
	return sets
}

// chooseSets enumerates the ways to pick k of the given ids, preserving
// their listed order, bounded by limit. k of zero yields one empty pick.
func chooseSets(ids []string, k, limit int) [][]string {
	if k == 0 {
		return [][]string{{}}
	}
	if k > len(ids) || limit <= 0 {
		return nil
	}
	var out [][]string
	var rec func(start int, cur []string)
	rec = func(start int, cur []string) {
		if len(out) >= limit {
			return
		}
		if len(cur) == k {
			out = append(out, append([]string(nil), cur...))
			return
		}
		for i := start; i <= len(ids)-(k-len(cur)); i++ {
			rec(i+1, append(cur, ids[i]))
		}
	}
	rec(0, nil)
	return out
}

// orderings enumerates every permutation of ids, bounded by limit.
func orderings(ids []string, limit int) [][]string {
	var out [][]string
	var rec func(cur, rest []string)
	rec = func(cur, rest []string) {
		if len(out) >= limit {
			return
		}
		if len(rest) == 0 {
			out = append(out, append([]string(nil), cur...))
			return
		}
		for i := range rest {
			remaining := append(append([]string(nil), rest[:i]...), rest[i+1:]...)
			rec(append(cur, rest[i]), remaining)
		}
	}
	rec(nil, ids)
	return out
}
