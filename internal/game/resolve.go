package game

import (
	"fmt"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/effects"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// resolveTopOfStack pops and resolves the top stack item. Resolution may
// suspend on a decision, in which case s.Pending is armed and the item
// finalizes when the decision chain drains.
func (s *State) resolveTopOfStack() {
	item, err := s.Stack.Pop()
	if err != nil {
		return
	}

	// An item whose every chosen target became illegal is countered on
	// resolution instead of resolving.
	if len(item.Targets) > 0 && !s.anyTargetLegal(&item) {
		s.counterItem(&item)
		s.checkStateBasedActions()
		return
	}

	if item.Kind == rules.StackItemKindSpell && item.InstanceID != "" {
		inst := &CardInstance{ID: item.InstanceID, CardID: item.CardID, OwnerID: item.Controller}
		if def, ok := s.DB.Get(item.CardID); ok && def.IsPermanentType() {
			s.resolvePermanentSpell(&item, inst, def)
			s.Events.Publish(rules.Event{Type: rules.EventStackResolved, SourceID: item.ID, Controller: item.Controller})
			s.checkStateBasedActions()
			return
		}
	}

	effs := s.effectsForItem(&item)
	if s.applyEffects(&item, effs, 0) {
		return
	}
	s.finalizeItem(&item)
}

// effectsForItem returns the effect list a stack item resolves with,
// accounting for the chosen mode of modal spells.
func (s *State) effectsForItem(item *rules.StackItem) []cards.Effect {
	if len(item.Effects) > 0 {
		return item.Effects
	}
	if item.CardID == "" {
		return nil
	}
	def, ok := s.DB.Get(item.CardID)
	if !ok {
		return nil
	}
	if len(def.Modes) > 0 {
		if item.Mode >= 0 && item.Mode < len(def.Modes) {
			return def.Modes[item.Mode].Effects
		}
		return nil
	}
	return def.Effects
}

// resolvePermanentSpell puts a resolving permanent spell onto the
// battlefield. Auras enter attached to their chosen target; if the target is
// gone the aura resolves into the graveyard.
func (s *State) resolvePermanentSpell(item *rules.StackItem, inst *CardInstance, def *cards.Definition) {
	if def.IsAura() {
		if len(item.Targets) == 0 || !s.targetLegal(item.Targets[0], item.Controller) {
			s.MoveToGraveyard(inst)
			return
		}
		perm := s.EnterBattlefield(inst, item.Controller)
		perm.AttachedTo = item.Targets[0]
		s.DeriveAll()
		return
	}
	s.EnterBattlefield(inst, item.Controller)
	s.DeriveAll()
}

// finalizeItem moves a resolved spell to its post-resolution zone and
// publishes the resolution event.
func (s *State) finalizeItem(item *rules.StackItem) {
	if item.Kind == rules.StackItemKindSpell && item.InstanceID != "" {
		inst := &CardInstance{ID: item.InstanceID, CardID: item.CardID, OwnerID: item.Controller}
		if item.Flashback {
			s.MoveToExile(inst, "")
		} else {
			s.MoveToGraveyard(inst)
		}
	}
	s.Events.Publish(rules.Event{Type: rules.EventStackResolved, SourceID: item.ID, Controller: item.Controller})
	s.checkStateBasedActions()
}

// counterItem sends a countered spell to its owner's graveyard.
func (s *State) counterItem(item *rules.StackItem) {
	if item.Kind == rules.StackItemKindSpell && item.InstanceID != "" {
		inst := &CardInstance{ID: item.InstanceID, CardID: item.CardID, OwnerID: item.Controller}
		s.MoveToGraveyard(inst)
	}
	s.Events.Publish(rules.Event{Type: rules.EventSpellCountered, TargetID: item.ID, Controller: item.Controller})
}

// targetLegal reports whether a chosen target id can still be affected by
// the given actor at resolution time.
func (s *State) targetLegal(id, actorID string) bool {
	if _, ok := s.Players[id]; ok {
		return true
	}
	if perm, ok := s.Battlefield[id]; ok {
		if snap := s.Derived(id); snap != nil && snap.HasKeyword(cards.KeywordHexproof) && perm.ControllerID != actorID {
			return false
		}
		return true
	}
	for _, si := range s.Stack.List() {
		if si.ID == id {
			return true
		}
	}
	for _, player := range s.Players {
		for _, inst := range player.Graveyard {
			if inst.ID == id {
				return true
			}
		}
		for _, inst := range player.Hand {
			if inst.ID == id {
				return true
			}
		}
	}
	return false
}

func (s *State) anyTargetLegal(item *rules.StackItem) bool {
	for _, id := range item.Targets {
		if s.targetLegal(id, item.Controller) {
			return true
		}
	}
	return false
}

// applyEffects walks an effect list, mutating state per effect. It returns
// true if a decision suspended the walk; the pending decision's context then
// carries the untouched remainder.
func (s *State) applyEffects(item *rules.StackItem, effs []cards.Effect, targetIdx int) bool {
	for i := 0; i < len(effs); i++ {
		eff := effs[i]

		var targets []string
		if eff.Target != nil {
			want := eff.Target.Targets()
			for len(targets) < want && targetIdx < len(item.Targets) {
				targets = append(targets, item.Targets[targetIdx])
				targetIdx++
			}
		}

		amount := eff.Amount
		if eff.UsesX {
			amount = item.X
		}

		suspendCtx := func() *decisionContext {
			return &decisionContext{
				item:      item,
				effect:    eff,
				remaining: append([]cards.Effect(nil), effs[i+1:]...),
				targetIdx: targetIdx,
			}
		}

		switch eff.Kind {
		case cards.EffectDealDamage:
			if eff.EachPlayer {
				for _, id := range s.Order {
					s.damagePlayer(id, amount, item.SourceID)
				}
				break
			}
			for _, id := range targets {
				if !s.targetLegal(id, item.Controller) {
					continue
				}
				if _, ok := s.Players[id]; ok {
					s.damagePlayer(id, amount, item.SourceID)
				} else {
					s.damageCreature(id, amount, item.SourceID)
				}
			}

		case cards.EffectGainLife:
			s.gainLife(item.Controller, amount)

		case cards.EffectLoseLife:
			switch {
			case len(targets) > 0:
				for _, id := range targets {
					if _, ok := s.Players[id]; ok {
						s.loseLife(id, amount)
					}
				}
			case eff.EachPlayer:
				for _, id := range s.Order {
					s.loseLife(id, amount)
				}
			default:
				s.loseLife(s.Opponent(item.Controller), amount)
			}

		case cards.EffectDrawCards:
			who := item.Controller
			if len(targets) > 0 {
				if _, ok := s.Players[targets[0]]; ok {
					who = targets[0]
				}
			}
			for n := 0; n < amount && !s.Over; n++ {
				s.DrawCard(who)
			}

		case cards.EffectDiscard:
			subjects := s.discardSubjects(item, eff, targets)
			if len(subjects) == 0 {
				break
			}
			ctx := suspendCtx()
			ctx.subjects = subjects[1:]
			if s.suspendDiscard(ctx, subjects[0], eff) {
				return true
			}
			for len(ctx.subjects) > 0 {
				next := ctx.subjects[0]
				ctx.subjects = ctx.subjects[1:]
				if s.suspendDiscard(ctx, next, eff) {
					return true
				}
			}

		case cards.EffectAddCounters:
			for _, id := range targets {
				if perm, ok := s.Battlefield[id]; ok && s.targetLegal(id, item.Controller) {
					perm.Counters.Add(eff.CounterType, amount)
				}
			}
			s.DeriveAll()

		case cards.EffectCounterSpell:
			for _, id := range targets {
				if countered, ok := s.Stack.Remove(id); ok {
					s.counterItem(&countered)
				}
			}

		case cards.EffectDestroy:
			for _, id := range targets {
				if !s.targetLegal(id, item.Controller) {
					continue
				}
				s.destroyPermanent(id)
			}

		case cards.EffectExile:
			for _, id := range targets {
				if !s.targetLegal(id, item.Controller) {
					continue
				}
				if inst, ok := s.LeaveBattlefield(id); ok {
					s.MoveToExile(inst, item.SourceID)
				}
			}
			s.DeriveAll()

		case cards.EffectReturnToHand:
			for _, id := range targets {
				if !s.targetLegal(id, item.Controller) {
					continue
				}
				if inst, ok := s.LeaveBattlefield(id); ok && !inst.Token {
					owner := s.Players[inst.OwnerID]
					owner.Hand = append(owner.Hand, inst)
				}
			}
			s.DeriveAll()

		case cards.EffectReturnToBattlefield:
			for _, id := range targets {
				inst, zone := s.FindInstance(id)
				if inst == nil || zone != "GRAVEYARD" {
					continue
				}
				if got, ok := s.removeFromGraveyard(inst.OwnerID, id); ok {
					s.EnterBattlefield(got, item.Controller)
				}
			}
			s.DeriveAll()

		case cards.EffectAttach:
			if len(targets) > 0 && item.SourceID != "" {
				if perm, ok := s.Battlefield[item.SourceID]; ok && s.targetLegal(targets[0], item.Controller) {
					perm.AttachedTo = targets[0]
				}
			}
			s.DeriveAll()

		case cards.EffectModifyPT:
			mod := effects.Modifier{
				Power:     eff.Power,
				Toughness: eff.Toughness,
				Grant:     eff.Grants,
			}
			if eff.UsesX {
				mod.Power = item.X
				mod.Toughness = item.X
			}
			for _, id := range targets {
				if _, ok := s.Battlefield[id]; ok && s.targetLegal(id, item.Controller) {
					s.AddTemporaryEffect(item.SourceID, item.Controller, id, mod)
				}
			}
			s.DeriveAll()

		case cards.EffectAddMana:
			if eff.Mana != nil {
				pool := s.Players[item.Controller].Pool
				for color, n := range eff.Mana.Colors {
					pool.Add(color, n)
				}
				pool.AddAny(eff.Mana.Any)
				pool.AddGeneric(eff.Mana.Generic)
			}

		case cards.EffectCreateToken:
			if eff.Token != nil {
				cardID := s.ensureTokenDef(eff.Token)
				count := eff.Token.Count
				if count <= 0 {
					count = 1
				}
				for n := 0; n < count; n++ {
					s.NewToken(cardID, item.Controller)
				}
				s.DeriveAll()
			}

		case cards.EffectVote:
			subjects := s.playersFrom(s.ActivePlayer())
			ctx := suspendCtx()
			ctx.subjects = subjects[1:]
			ctx.votes = make(map[string]int, len(eff.VoteOptions))
			s.Pending = s.newDecision(DecisionVote, subjects[0],
				"cast your vote", eff.VoteOptions, 1, 1, false, ctx)
			return true

		case cards.EffectScry:
			player := s.Players[item.Controller]
			n := amount
			if n > len(player.Library) {
				n = len(player.Library)
			}
			if n == 0 {
				break
			}
			ctx := suspendCtx()
			for _, inst := range player.Library[:n] {
				ctx.revealed = append(ctx.revealed, inst.ID)
			}
			s.Pending = s.newDecision(DecisionScry, item.Controller,
				"order the top of your library; unchosen cards go to the bottom",
				ctx.revealed, 0, n, true, ctx)
			return true

		case cards.EffectSearchLibrary:
			player := s.Players[item.Controller]
			var options []string
			for _, inst := range player.Library {
				if eff.Filter == nil || s.instanceMatches(inst, eff.Filter) {
					options = append(options, inst.ID)
				}
			}
			limit := amount
			if limit <= 0 {
				limit = 1
			}
			if len(options) == 0 {
				s.ShuffleLibrary(item.Controller)
				break
			}
			ctx := suspendCtx()
			s.Pending = s.newDecision(DecisionSearch, item.Controller,
				"search your library", options, 0, limit, false, ctx)
			return true

		case cards.EffectRevealSplit:
			player := s.Players[item.Controller]
			n := amount
			if n > len(player.Library) {
				n = len(player.Library)
			}
			if n == 0 {
				break
			}
			ctx := suspendCtx()
			for _, inst := range player.Library[:n] {
				ctx.revealed = append(ctx.revealed, inst.ID)
			}
			s.Pending = s.newDecision(DecisionSplit, s.Opponent(item.Controller),
				"separate the revealed cards into two piles", ctx.revealed, 0, n, false, ctx)
			return true

		case cards.EffectSacrifice:
			subjects := s.sacrificeSubjects(item, eff, targets)
			if len(subjects) == 0 {
				break
			}
			ctx := suspendCtx()
			ctx.subjects = subjects[1:]
			if s.suspendSacrifice(ctx, subjects[0], eff) {
				return true
			}
			for len(ctx.subjects) > 0 {
				next := ctx.subjects[0]
				ctx.subjects = ctx.subjects[1:]
				if s.suspendSacrifice(ctx, next, eff) {
					return true
				}
			}

		case cards.EffectTap:
			for _, id := range targets {
				if perm, ok := s.Battlefield[id]; ok && s.targetLegal(id, item.Controller) {
					perm.Tapped = true
				}
			}

		case cards.EffectUntap:
			for _, id := range targets {
				if perm, ok := s.Battlefield[id]; ok && s.targetLegal(id, item.Controller) {
					perm.Tapped = false
				}
			}
		}

		s.checkStateBasedActions()
		if s.Over {
			return false
		}
	}
	return false
}

// playersFrom returns both player ids starting with the given one.
func (s *State) playersFrom(first string) []string {
	return []string{first, s.Opponent(first)}
}

// discardSubjects determines who discards for a discard effect.
func (s *State) discardSubjects(item *rules.StackItem, eff cards.Effect, targets []string) []string {
	if len(targets) > 0 {
		var out []string
		for _, id := range targets {
			if _, ok := s.Players[id]; ok {
				out = append(out, id)
			}
		}
		return out
	}
	if eff.EachPlayer {
		return s.playersFrom(s.ActivePlayer())
	}
	return []string{item.Controller}
}

// suspendDiscard arms a discard decision for the player, or discards the
// whole hand immediately when no real choice exists. Returns true if a
// decision was armed.
func (s *State) suspendDiscard(ctx *decisionContext, playerID string, eff cards.Effect) bool {
	player := s.Players[playerID]
	amount := eff.Amount
	if eff.UsesX {
		amount = ctx.item.X
	}
	if len(player.Hand) <= amount {
		for len(player.Hand) > 0 {
			s.discardCard(playerID, player.Hand[0].ID)
		}
		return false
	}
	options := make([]string, 0, len(player.Hand))
	for _, inst := range player.Hand {
		options = append(options, inst.ID)
	}
	s.Pending = s.newDecision(DecisionDiscard, playerID,
		fmt.Sprintf("discard %d cards", amount), options, amount, amount, false, ctx)
	return true
}

// sacrificeSubjects determines who sacrifices for a sacrifice effect.
func (s *State) sacrificeSubjects(item *rules.StackItem, eff cards.Effect, targets []string) []string {
	if len(targets) > 0 {
		var out []string
		for _, id := range targets {
			if _, ok := s.Players[id]; ok {
				out = append(out, id)
			}
		}
		return out
	}
	if eff.EachPlayer {
		return s.playersFrom(s.ActivePlayer())
	}
	return []string{s.Opponent(item.Controller)}
}

// suspendSacrifice arms a sacrifice decision for the player, or sacrifices
// everything eligible when no real choice exists. Returns true if a
// decision was armed.
func (s *State) suspendSacrifice(ctx *decisionContext, playerID string, eff cards.Effect) bool {
	amount := eff.Amount
	if amount <= 0 {
		amount = 1
	}
	var options []string
	for _, perm := range s.Permanents() {
		if perm.ControllerID != playerID {
			continue
		}
		if eff.Filter != nil && !s.permanentMatches(perm, eff.Filter) {
			continue
		}
		options = append(options, perm.Instance.ID)
	}
	if len(options) <= amount {
		for _, id := range options {
			s.sacrificePermanent(id)
		}
		return false
	}
	s.Pending = s.newDecision(DecisionSacrifice, playerID,
		fmt.Sprintf("sacrifice %d permanents", amount), options, amount, amount, false, ctx)
	return true
}

// instanceMatches checks a non-battlefield instance against a selector using
// its printed characteristics.
func (s *State) instanceMatches(inst *CardInstance, sel *cards.Selector) bool {
	def := s.Definition(inst)
	if len(sel.Types) > 0 {
		found := false
		for _, t := range sel.Types {
			if def.HasType(t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, sub := range sel.Subtypes {
		if !def.HasSubtype(sub) {
			return false
		}
	}
	for _, kw := range sel.Keywords {
		if !def.HasKeyword(kw) {
			return false
		}
	}
	return true
}

// permanentMatches checks a battlefield permanent against a selector using
// its derived characteristics.
func (s *State) permanentMatches(perm *Permanent, sel *cards.Selector) bool {
	snap := s.Derived(perm.Instance.ID)
	if snap == nil {
		return s.instanceMatches(perm.Instance, sel)
	}
	if len(sel.Types) > 0 {
		found := false
		for _, t := range sel.Types {
			if snap.HasType(t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, sub := range sel.Subtypes {
		if !snap.HasSubtype(sub) {
			return false
		}
	}
	for _, kw := range sel.Keywords {
		if !snap.HasKeyword(kw) {
			return false
		}
	}
	return true
}

// discardCard moves a card from hand to graveyard and publishes the event.
func (s *State) discardCard(playerID, instanceID string) {
	inst, ok := s.removeFromHand(playerID, instanceID)
	if !ok {
		return
	}
	s.MoveToGraveyard(inst)
	s.Events.Publish(rules.Event{Type: rules.EventDiscardedCard, PlayerID: playerID, TargetID: instanceID})
}

// sacrificePermanent moves a permanent to its owner's graveyard. Sacrifice
// ignores indestructible.
func (s *State) sacrificePermanent(instanceID string) {
	if _, ok := s.Battlefield[instanceID]; !ok {
		return
	}
	s.Events.Publish(rules.Event{Type: rules.EventDies, TargetID: instanceID})
	if inst, ok := s.LeaveBattlefield(instanceID); ok {
		s.MoveToGraveyard(inst)
	}
	s.Events.Publish(rules.Event{Type: rules.EventSacrificed, TargetID: instanceID})
	s.DeriveAll()
}

// damageCreature marks damage on a creature. Deathtouch damage is tracked
// separately so any amount of it reads as lethal, and lifelink damage heals
// the source's controller.
func (s *State) damageCreature(targetID string, amount int, sourceID string) {
	if amount <= 0 {
		return
	}
	perm, ok := s.Battlefield[targetID]
	if !ok {
		return
	}
	perm.Damage += amount
	if sourceID != "" {
		if snap := s.Derived(sourceID); snap != nil {
			if snap.HasKeyword(cards.KeywordDeathtouch) {
				perm.DeathtouchDamage = true
			}
			if snap.HasKeyword(cards.KeywordLifelink) {
				s.gainLife(snap.ControllerID, amount)
			}
		}
	}
	s.Events.Publish(rules.Event{Type: rules.EventDamagedCreature, TargetID: targetID, SourceID: sourceID, Amount: amount})
}

// damagePlayer deals damage to a player, honoring lifelink on the source.
func (s *State) damagePlayer(playerID string, amount int, sourceID string) {
	if amount <= 0 {
		return
	}
	if sourceID != "" {
		if snap := s.Derived(sourceID); snap != nil && snap.HasKeyword(cards.KeywordLifelink) {
			s.gainLife(snap.ControllerID, amount)
		}
	}
	s.Events.Publish(rules.Event{Type: rules.EventDamagedPlayer, TargetID: playerID, SourceID: sourceID, Amount: amount})
	s.loseLife(playerID, amount)
}

func (s *State) gainLife(playerID string, amount int) {
	if amount <= 0 {
		return
	}
	player := s.Players[playerID]
	player.Life += amount
	s.Events.Publish(rules.Event{Type: rules.EventLifeChanged, PlayerID: playerID, Amount: amount})
}

func (s *State) loseLife(playerID string, amount int) {
	if amount <= 0 {
		return
	}
	player := s.Players[playerID]
	player.Life -= amount
	s.Events.Publish(rules.Event{Type: rules.EventLifeChanged, PlayerID: playerID, Amount: -amount})
}
