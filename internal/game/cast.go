package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/mana"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
	"github.com/arcanarena/arena-server-go/internal/game/targeting"
)

// defendingPlayer returns the player being attacked, or empty outside of
// declared combat.
func (s *State) defendingPlayer() string {
	if s.Combat.AttackersDeclared {
		return s.Opponent(s.ActivePlayer())
	}
	return ""
}

// targetCandidates builds the targeting view of the zone a spec looks at.
// Battlefield candidates are built from derived state so granted keywords
// count.
func (s *State) targetCandidates(spec cards.TargetSpec) []targeting.Candidate {
	var out []targeting.Candidate
	zone := spec.Zone
	if zone == "" {
		zone = cards.ZoneBattlefield
	}
	switch zone {
	case cards.ZoneBattlefield:
		for _, perm := range s.Permanents() {
			snap := s.Derived(perm.Instance.ID)
			if snap == nil {
				continue
			}
			kw := make(map[cards.Keyword]bool)
			for _, k := range snap.Keywords() {
				kw[k] = true
			}
			out = append(out, targeting.Candidate{
				ID:           perm.Instance.ID,
				ControllerID: perm.ControllerID,
				Types:        snap.Types,
				Subtypes:     snap.Subtypes,
				Keywords:     kw,
			})
		}
		if spec.Selector.Players || spec.Selector.AnyTarget {
			for _, id := range s.Order {
				out = append(out, targeting.Candidate{ID: id, ControllerID: id, Player: true})
			}
		}
	case cards.ZoneStack:
		for _, item := range s.Stack.List() {
			if item.Kind != rules.StackItemKindSpell {
				continue
			}
			def, ok := s.DB.Get(item.CardID)
			if !ok {
				continue
			}
			out = append(out, targeting.Candidate{
				ID:           item.ID,
				ControllerID: item.Controller,
				Types:        def.Types,
				Subtypes:     def.Subtypes,
			})
		}
	case cards.ZoneGraveyard:
		for _, playerID := range s.Order {
			for _, inst := range s.Players[playerID].Graveyard {
				def := s.Definition(inst)
				out = append(out, targeting.Candidate{
					ID:           inst.ID,
					ControllerID: playerID,
					Types:        def.Types,
					Subtypes:     def.Subtypes,
				})
			}
		}
	case cards.ZoneHand:
		for _, playerID := range s.Order {
			for _, inst := range s.Players[playerID].Hand {
				def := s.Definition(inst)
				out = append(out, targeting.Candidate{
					ID:           inst.ID,
					ControllerID: playerID,
					Types:        def.Types,
					Subtypes:     def.Subtypes,
				})
			}
		}
	}
	return out
}

// targetSpecsOf returns the target requirements of an effect list, in the
// order targets are consumed during resolution.
func targetSpecsOf(effs []cards.Effect) []cards.TargetSpec {
	var out []cards.TargetSpec
	for _, eff := range effs {
		if eff.Target != nil {
			out = append(out, *eff.Target)
		}
	}
	return out
}

// validateTargets checks chosen target ids against the effect list's target
// requirements, consumed in order.
func (s *State) validateTargets(actor string, effs []cards.Effect, chosen []string) error {
	specs := targetSpecsOf(effs)
	idx := 0
	for _, spec := range specs {
		want := spec.Targets()
		have := len(chosen) - idx
		if have > want {
			have = want
		}
		if have < want && !spec.UpTo {
			return fmt.Errorf("requires %d targets, got %d", want, have)
		}
		legal := targeting.Filter(s.targetCandidates(spec), spec, actor, s.defendingPlayer())
		legalSet := make(map[string]bool, len(legal))
		for _, c := range legal {
			legalSet[c.ID] = true
		}
		picked := chosen[idx : idx+have]
		seen := make(map[string]bool, len(picked))
		controllers := make(map[string]bool, len(picked))
		for _, id := range picked {
			if !legalSet[id] {
				return fmt.Errorf("%s is not a legal target", id)
			}
			if seen[id] {
				return fmt.Errorf("%s chosen as a target twice", id)
			}
			seen[id] = true
			if spec.DistinctControllers {
				controller := id
				if perm, ok := s.Battlefield[id]; ok {
					controller = perm.ControllerID
				}
				if controllers[controller] {
					return fmt.Errorf("targets must have different controllers")
				}
				controllers[controller] = true
			}
		}
		idx += have
	}
	if idx < len(chosen) {
		return fmt.Errorf("too many targets: %d supplied, %d consumed", len(chosen), idx)
	}
	return nil
}

// castTiming returns the effective timing restriction for casting a card.
func castTiming(def *cards.Definition) cards.Timing {
	if def.Timing != "" {
		return def.Timing
	}
	if def.HasType(cards.TypeInstant) {
		return cards.TimingInstant
	}
	return cards.TimingSorcery
}

// sorceryWindow reports whether the actor may take sorcery-speed actions
// right now.
func (s *State) sorceryWindow(actor string) bool {
	return actor == s.ActivePlayer() && s.Turn.IsMainStep() && s.Stack.IsEmpty()
}

// spellEffects returns the effect list the cast will resolve with,
// respecting the chosen mode.
func spellEffects(def *cards.Definition, mode int) ([]cards.Effect, error) {
	if len(def.Modes) > 0 {
		if mode < 0 || mode >= len(def.Modes) {
			return nil, fmt.Errorf("mode %d out of range for %s", mode, def.Name)
		}
		return def.Modes[mode].Effects, nil
	}
	return def.Effects, nil
}

// validateCast checks a CAST_SPELL action end to end without mutating.
func (s *State) validateCast(a Action) error {
	actor := a.ActorID
	inst, zone := s.FindInstance(a.ObjectID)
	if inst == nil {
		return fmt.Errorf("card %s not found", a.ObjectID)
	}
	if inst.OwnerID != actor {
		return fmt.Errorf("card %s is not yours", a.ObjectID)
	}

	def := s.Definition(inst)
	if def.HasType(cards.TypeLand) {
		return fmt.Errorf("lands are played, not cast")
	}

	if a.Flashback {
		if def.Flashback == nil {
			return fmt.Errorf("%s has no flashback cost", def.Name)
		}
		if zone != "GRAVEYARD" {
			return fmt.Errorf("flashback requires the card to be in your graveyard")
		}
	} else if zone != "HAND" {
		return fmt.Errorf("card %s is not in your hand", a.ObjectID)
	}

	switch castTiming(def) {
	case cards.TimingSorcery:
		if !s.sorceryWindow(actor) {
			return fmt.Errorf("%s can only be cast during your main phase with an empty stack", def.Name)
		}
	case cards.TimingWhileAttacking:
		return fmt.Errorf("%s cannot be cast", def.Name)
	}

	effs, err := spellEffects(def, a.Mode)
	if err != nil {
		return err
	}

	cost := def.Cost
	if a.Flashback {
		cost = def.Flashback
	}
	hasX := cost != nil && cost.X
	if a.X < 0 {
		return fmt.Errorf("x cannot be negative")
	}
	if a.X > 0 && !hasX {
		return fmt.Errorf("%s has no X in its cost", def.Name)
	}

	if a.Alternate != "" {
		alt, err := findAlternate(def, a.Alternate)
		if err != nil {
			return err
		}
		if a.X > 0 {
			return fmt.Errorf("alternate costs cannot be combined with X")
		}
		if a.Flashback {
			return fmt.Errorf("alternate costs cannot be combined with flashback")
		}
		if err := s.validateAlternate(actor, alt, a.AdditionalPays); err != nil {
			return err
		}
	} else if cost != nil {
		reduction := s.CostReduction(actor, def)
		pool := s.Players[actor].Pool
		if !mana.CanPay(cost, pool, a.X, reduction) {
			return fmt.Errorf("cannot pay %s", cost.String())
		}
	}

	if a.Alternate == "" {
		if err := s.validateAdditionalCosts(actor, a.ObjectID, def.AdditionalCosts, a.AdditionalPays); err != nil {
			return err
		}
	}

	// Auras target what they will enchant.
	if def.IsAura() {
		spec := cards.TargetSpec{Zone: cards.ZoneBattlefield}
		if def.AttachTo != nil {
			spec.Selector = *def.AttachTo
		}
		if len(a.Targets) != 1 {
			return fmt.Errorf("%s requires exactly one target to enchant", def.Name)
		}
		legal := targeting.Filter(s.targetCandidates(spec), spec, actor, s.defendingPlayer())
		for _, c := range legal {
			if c.ID == a.Targets[0] {
				return nil
			}
		}
		return fmt.Errorf("%s is not a legal target for %s", a.Targets[0], def.Name)
	}

	return s.validateTargets(actor, effs, a.Targets)
}

func findAlternate(def *cards.Definition, name string) (cards.AlternateCost, error) {
	for _, alt := range def.Alternates {
		if alt.Name == name {
			return alt, nil
		}
	}
	return cards.AlternateCost{}, fmt.Errorf("%s has no alternate cost %q", def.Name, name)
}

// validateAlternate checks eligibility and payability of an alternate cost.
func (s *State) validateAlternate(actor string, alt cards.AlternateCost, pays [][]string) error {
	if alt.RequiresSubtype != "" && !s.controlsSubtype(actor, alt.RequiresSubtype) {
		return fmt.Errorf("requires controlling a %s", alt.RequiresSubtype)
	}
	if alt.PayLife > 0 && s.Players[actor].Life < alt.PayLife {
		return fmt.Errorf("not enough life to pay %d", alt.PayLife)
	}
	return s.validateAdditionalCosts(actor, "", alt.ExtraCosts, pays)
}

func (s *State) controlsSubtype(playerID, subtype string) bool {
	for _, perm := range s.Permanents() {
		if perm.ControllerID != playerID {
			continue
		}
		if snap := s.Derived(perm.Instance.ID); snap != nil && snap.HasSubtype(subtype) {
			return true
		}
	}
	return false
}

// validateAdditionalCosts checks the non-mana cost list against the
// player's chosen payments. pays is indexed parallel to costs; costs that
// need no selection take an empty slot.
func (s *State) validateAdditionalCosts(actor, selfID string, costs []cards.Cost, pays [][]string) error {
	player := s.Players[actor]
	for i, cost := range costs {
		var pay []string
		if i < len(pays) {
			pay = pays[i]
		}
		switch cost.Kind {
		case cards.CostPayLife:
			if player.Life < cost.Amount {
				return fmt.Errorf("not enough life to pay %d", cost.Amount)
			}
		case cards.CostDiscardCards:
			if len(pay) != cost.Amount {
				return fmt.Errorf("cost requires discarding %d cards", cost.Amount)
			}
			for _, id := range pay {
				inst := s.instanceInHand(actor, id)
				if inst == nil {
					return fmt.Errorf("card %s is not in your hand", id)
				}
				if cost.Filter != nil && !s.instanceMatches(inst, cost.Filter) {
					return fmt.Errorf("card %s does not match the discard requirement", id)
				}
			}
		case cards.CostSacrificeSelf:
			if _, ok := s.Battlefield[selfID]; !ok {
				return fmt.Errorf("source is not on the battlefield")
			}
		case cards.CostSacrificeCreature, cards.CostSacrificeOther:
			amount := cost.Amount
			if amount <= 0 {
				amount = 1
			}
			if len(pay) != amount {
				return fmt.Errorf("cost requires sacrificing %d permanents", amount)
			}
			for _, id := range pay {
				perm, ok := s.Battlefield[id]
				if !ok || perm.ControllerID != actor {
					return fmt.Errorf("%s is not a permanent you control", id)
				}
				if cost.Kind == cards.CostSacrificeOther && id == selfID {
					return fmt.Errorf("cannot sacrifice the source itself")
				}
				if cost.Kind == cards.CostSacrificeCreature {
					if snap := s.Derived(id); snap == nil || !snap.IsCreature() {
						return fmt.Errorf("%s is not a creature", id)
					}
				}
				if cost.Filter != nil && !s.permanentMatches(perm, cost.Filter) {
					return fmt.Errorf("%s does not match the sacrifice requirement", id)
				}
			}
		case cards.CostTapSelf:
			perm, ok := s.Battlefield[selfID]
			if !ok {
				return fmt.Errorf("source is not on the battlefield")
			}
			if perm.Tapped {
				return fmt.Errorf("source is already tapped")
			}
			if perm.SummoningSick {
				snap := s.Derived(selfID)
				if snap != nil && snap.IsCreature() && !snap.HasKeyword(cards.KeywordHaste) {
					return fmt.Errorf("source has summoning sickness")
				}
			}
		case cards.CostMana:
			if cost.Mana != nil && !mana.CanPay(cost.Mana, player.Pool, 0, 0) {
				return fmt.Errorf("cannot pay %s", cost.Mana.String())
			}
		}
	}
	return nil
}

func (s *State) instanceInHand(playerID, instanceID string) *CardInstance {
	for _, inst := range s.Players[playerID].Hand {
		if inst.ID == instanceID {
			return inst
		}
	}
	return nil
}

// payAdditionalCosts pays a validated non-mana cost list.
func (s *State) payAdditionalCosts(actor, selfID string, costs []cards.Cost, pays [][]string) {
	player := s.Players[actor]
	for i, cost := range costs {
		var pay []string
		if i < len(pays) {
			pay = pays[i]
		}
		switch cost.Kind {
		case cards.CostPayLife:
			s.loseLife(actor, cost.Amount)
		case cards.CostDiscardCards:
			for _, id := range pay {
				s.discardCard(actor, id)
			}
		case cards.CostSacrificeSelf:
			s.sacrificePermanent(selfID)
		case cards.CostSacrificeCreature, cards.CostSacrificeOther:
			for _, id := range pay {
				s.sacrificePermanent(id)
			}
		case cards.CostTapSelf:
			if perm, ok := s.Battlefield[selfID]; ok {
				perm.Tapped = true
			}
		case cards.CostMana:
			if cost.Mana != nil {
				mana.Pay(cost.Mana, player.Pool, 0, 0)
			}
		}
	}
}

// applyCast commits a validated CAST_SPELL action: costs are paid, the card
// leaves its zone and the spell goes onto the stack.
func (s *State) applyCast(a Action) {
	actor := a.ActorID
	player := s.Players[actor]

	var inst *CardInstance
	if a.Flashback {
		inst, _ = s.removeFromGraveyard(actor, a.ObjectID)
	} else {
		inst, _ = s.removeFromHand(actor, a.ObjectID)
	}
	def := s.Definition(inst)

	if a.Alternate != "" {
		alt, _ := findAlternate(def, a.Alternate)
		if alt.PayLife > 0 {
			s.loseLife(actor, alt.PayLife)
		}
		s.payAdditionalCosts(actor, "", alt.ExtraCosts, a.AdditionalPays)
	} else {
		cost := def.Cost
		if a.Flashback {
			cost = def.Flashback
		}
		if cost != nil {
			mana.Pay(cost, player.Pool, a.X, s.CostReduction(actor, def))
		}
		s.payAdditionalCosts(actor, a.ObjectID, def.AdditionalCosts, a.AdditionalPays)
	}

	mode := -1
	if len(def.Modes) > 0 {
		mode = a.Mode
	}
	item := rules.StackItem{
		ID:          uuid.NewString(),
		Kind:        rules.StackItemKindSpell,
		Controller:  actor,
		Description: def.Name,
		InstanceID:  inst.ID,
		CardID:      inst.CardID,
		Targets:     append([]string(nil), a.Targets...),
		Mode:        mode,
		X:           a.X,
		Flashback:   a.Flashback,
	}
	s.Stack.Push(item)
	s.Events.Publish(rules.Event{Type: rules.EventSpellCast, SourceID: item.ID, Controller: actor})
	s.checkStateBasedActions()
}

// findActivated locates an activated ability on a permanent's definition.
func findActivated(def *cards.Definition, abilityID string) (cards.ActivatedAbility, error) {
	if abilityID == "" && len(def.Activated) == 1 {
		return def.Activated[0], nil
	}
	for _, ab := range def.Activated {
		if ab.ID == abilityID {
			return ab, nil
		}
	}
	return cards.ActivatedAbility{}, fmt.Errorf("%s has no ability %q", def.Name, abilityID)
}

// validateActivate checks an ACTIVATE_ABILITY action without mutating.
func (s *State) validateActivate(a Action) error {
	actor := a.ActorID
	perm, ok := s.Battlefield[a.ObjectID]
	if !ok {
		return fmt.Errorf("%s is not on the battlefield", a.ObjectID)
	}
	if perm.ControllerID != actor {
		return fmt.Errorf("you do not control %s", a.ObjectID)
	}
	def := s.Definition(perm.Instance)
	ability, err := findActivated(def, a.AbilityID)
	if err != nil {
		return err
	}

	switch ability.Timing {
	case cards.TimingSorcery:
		if !s.sorceryWindow(actor) {
			return fmt.Errorf("ability can only be activated during your main phase with an empty stack")
		}
	case cards.TimingWhileAttacking:
		if !s.Combat.IsAttacking(a.ObjectID) {
			return fmt.Errorf("ability requires %s to be attacking", a.ObjectID)
		}
	}

	if err := s.validateAdditionalCosts(actor, a.ObjectID, ability.Costs, a.AdditionalPays); err != nil {
		return err
	}
	return s.validateTargets(actor, ability.Effects, a.Targets)
}

// applyActivate commits a validated ACTIVATE_ABILITY action. Mana abilities
// resolve immediately; everything else goes onto the stack.
func (s *State) applyActivate(a Action) {
	actor := a.ActorID
	perm := s.Battlefield[a.ObjectID]
	def := s.Definition(perm.Instance)
	ability, _ := findActivated(def, a.AbilityID)

	s.payAdditionalCosts(actor, a.ObjectID, ability.Costs, a.AdditionalPays)
	s.Events.Publish(rules.Event{Type: rules.EventAbilityActivated, SourceID: a.ObjectID, Controller: actor})

	if ability.ManaAbility {
		item := rules.StackItem{
			ID:         uuid.NewString(),
			Kind:       rules.StackItemKindActivated,
			Controller: actor,
			SourceID:   a.ObjectID,
		}
		s.applyEffects(&item, ability.Effects, 0)
		return
	}

	s.Stack.Push(rules.StackItem{
		ID:          uuid.NewString(),
		Kind:        rules.StackItemKindActivated,
		Controller:  actor,
		Description: fmt.Sprintf("%s: %s", def.Name, ability.Text),
		SourceID:    a.ObjectID,
		Targets:     append([]string(nil), a.Targets...),
		Effects:     ability.Effects,
	})
	s.checkStateBasedActions()
}
