package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// DecisionKind tags the kind of out-of-band choice a pending decision is
// waiting for.
type DecisionKind string

const (
	DecisionMulligan  DecisionKind = "MULLIGAN"
	DecisionBottom    DecisionKind = "BOTTOM"
	DecisionScry      DecisionKind = "SCRY"
	DecisionDiscard   DecisionKind = "DISCARD"
	DecisionVote      DecisionKind = "VOTE"
	DecisionSearch    DecisionKind = "SEARCH"
	DecisionSplit     DecisionKind = "SPLIT"
	DecisionPickPile  DecisionKind = "PICK_PILE"
	DecisionSacrifice DecisionKind = "SACRIFICE"
)

// Mulligan option tokens.
const (
	choiceKeep     = "KEEP"
	choiceMulligan = "MULLIGAN"
	choicePileA    = "PILE_A"
	choicePileB    = "PILE_B"
)

// PendingDecision suspends resolution until its addressee submits a
// RESOLVE_DECISION action. At most one is active; follow-up decisions are
// chained through the context, never held in parallel slots.
type PendingDecision struct {
	ID       string
	PlayerID string
	Kind     DecisionKind
	Prompt   string
	// Options are the ids or tokens the addressee may pick from.
	Options []string
	// MinPicks/MaxPicks bound how many options the choice must carry.
	MinPicks int
	MaxPicks int
	// Ordered marks decisions where choice order is meaningful (scry top
	// order, bottoming order).
	Ordered bool

	ctx *decisionContext
}

// decisionContext carries everything needed to resume a suspended
// resolution: the stack item, the suspended effect, the effects not yet
// applied, target bookkeeping and per-kind accumulators.
type decisionContext struct {
	item      *rules.StackItem
	effect    cards.Effect
	remaining []cards.Effect
	targetIdx int

	// subjects are players still to act for multi-subject decisions.
	subjects []string
	// votes tallies vote counts by option.
	votes map[string]int

	// revealed holds instance ids taken off the library for scry, search
	// and split decisions.
	revealed []string
	// pileA is the first pile of a split awaiting the pick.
	pileA []string
}

func (s *State) newDecision(kind DecisionKind, playerID, prompt string, options []string, min, max int, ordered bool, ctx *decisionContext) *PendingDecision {
	return &PendingDecision{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Kind:     kind,
		Prompt:   prompt,
		Options:  options,
		MinPicks: min,
		MaxPicks: max,
		Ordered:  ordered,
		ctx:      ctx,
	}
}

// newMulliganDecision arms the keep-or-mulligan choice for a player during
// game setup.
func newMulliganDecision(s *State, playerID string) *PendingDecision {
	return &PendingDecision{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Kind:     DecisionMulligan,
		Prompt:   "keep this hand or mulligan",
		Options:  []string{choiceKeep, choiceMulligan},
		MinPicks: 1,
		MaxPicks: 1,
		ctx:      &decisionContext{},
	}
}

// validateChoice checks a submitted choice against the pending decision.
func (pd *PendingDecision) validateChoice(choice []string) error {
	if len(choice) < pd.MinPicks || len(choice) > pd.MaxPicks {
		return fmt.Errorf("decision requires between %d and %d picks, got %d", pd.MinPicks, pd.MaxPicks, len(choice))
	}
	allowed := make(map[string]bool, len(pd.Options))
	for _, opt := range pd.Options {
		allowed[opt] = true
	}
	seen := make(map[string]bool, len(choice))
	for _, pick := range choice {
		if !allowed[pick] {
			return fmt.Errorf("pick %q is not among the offered options", pick)
		}
		if seen[pick] {
			return fmt.Errorf("pick %q chosen twice", pick)
		}
		seen[pick] = true
	}
	return nil
}

// resolveDecision consumes the active pending decision with the submitted
// choice and resumes whatever was suspended. A resumption may install a new
// pending decision; the caller observes that through s.Pending.
func (s *State) resolveDecision(choice []string) error {
	pd := s.Pending
	if pd == nil {
		return fmt.Errorf("no pending decision")
	}
	s.Pending = nil

	switch pd.Kind {
	case DecisionMulligan:
		return s.resumeMulligan(pd, choice)
	case DecisionBottom:
		return s.resumeBottom(pd, choice)
	case DecisionScry:
		return s.resumeScry(pd, choice)
	case DecisionDiscard:
		return s.resumeDiscard(pd, choice)
	case DecisionVote:
		return s.resumeVote(pd, choice)
	case DecisionSearch:
		return s.resumeSearch(pd, choice)
	case DecisionSplit:
		return s.resumeSplit(pd, choice)
	case DecisionPickPile:
		return s.resumePickPile(pd, choice)
	case DecisionSacrifice:
		return s.resumeSacrifice(pd, choice)
	default:
		return fmt.Errorf("unknown decision kind %s", pd.Kind)
	}
}

func (s *State) resumeMulligan(pd *PendingDecision, choice []string) error {
	player := s.Players[pd.PlayerID]
	if choice[0] == choiceMulligan && player.Mulligans < maxMulligans-1 {
		player.Library = append(player.Library, player.Hand...)
		player.Hand = nil
		s.ShuffleLibrary(pd.PlayerID)
		for i := 0; i < startingHandSize; i++ {
			s.drawCardSilent(pd.PlayerID)
		}
		player.Mulligans++
		s.Pending = newMulliganDecision(s, pd.PlayerID)
		return nil
	}

	player.KeptHand = true
	if player.Mulligans > 0 {
		options := make([]string, 0, len(player.Hand))
		for _, inst := range player.Hand {
			options = append(options, inst.ID)
		}
		n := player.Mulligans
		if n > len(player.Hand) {
			n = len(player.Hand)
		}
		s.Pending = s.newDecision(DecisionBottom, pd.PlayerID,
			fmt.Sprintf("put %d cards on the bottom of your library", n),
			options, n, n, true, &decisionContext{})
		return nil
	}
	s.advanceMulliganChain(pd.PlayerID)
	return nil
}

func (s *State) resumeBottom(pd *PendingDecision, choice []string) error {
	player := s.Players[pd.PlayerID]
	for _, id := range choice {
		inst, ok := s.removeFromHand(pd.PlayerID, id)
		if !ok {
			return fmt.Errorf("card %s not in hand", id)
		}
		player.Library = append(player.Library, inst)
	}
	s.advanceMulliganChain(pd.PlayerID)
	return nil
}

// advanceMulliganChain moves the setup chain to the next player who has not
// kept, or lets the game begin.
func (s *State) advanceMulliganChain(justKept string) {
	for _, id := range s.Order {
		if id != justKept && !s.Players[id].KeptHand {
			s.Pending = newMulliganDecision(s, id)
			return
		}
	}
	s.Pending = nil
}

func (s *State) resumeScry(pd *PendingDecision, choice []string) error {
	player := s.Players[pd.PlayerID]

	// choice lists the cards kept on top, in final order; everything else
	// revealed goes to the bottom in revealed order.
	kept := make(map[string]bool, len(choice))
	for _, id := range choice {
		kept[id] = true
	}
	byID := make(map[string]*CardInstance, len(pd.ctx.revealed))
	for _, id := range pd.ctx.revealed {
		for _, inst := range player.Library {
			if inst.ID == id {
				byID[id] = inst
			}
		}
	}
	// Remove revealed cards from the top of the library.
	player.Library = player.Library[len(pd.ctx.revealed):]

	top := make([]*CardInstance, 0, len(choice))
	for _, id := range choice {
		top = append(top, byID[id])
	}
	player.Library = append(top, player.Library...)
	for _, id := range pd.ctx.revealed {
		if !kept[id] {
			player.Library = append(player.Library, byID[id])
		}
	}
	return s.resumeEffects(pd.ctx)
}

func (s *State) resumeDiscard(pd *PendingDecision, choice []string) error {
	for _, id := range choice {
		s.discardCard(pd.PlayerID, id)
	}
	// Multi-subject discards advance to the next player's selection.
	if len(pd.ctx.subjects) > 0 {
		next := pd.ctx.subjects[0]
		pd.ctx.subjects = pd.ctx.subjects[1:]
		if s.suspendDiscard(pd.ctx, next, pd.ctx.effect) {
			return nil
		}
	}
	return s.resumeEffects(pd.ctx)
}

func (s *State) resumeVote(pd *PendingDecision, choice []string) error {
	pd.ctx.votes[choice[0]]++
	if len(pd.ctx.subjects) > 0 {
		next := pd.ctx.subjects[0]
		pd.ctx.subjects = pd.ctx.subjects[1:]
		s.Pending = s.newDecision(DecisionVote, next, pd.Prompt, pd.Options, 1, 1, false, pd.ctx)
		return nil
	}

	// All votes cast: the winning option's effects run before whatever
	// remained of the original effect list. Ties break in option order.
	winner := ""
	best := -1
	for _, opt := range pd.ctx.effect.VoteOptions {
		if pd.ctx.votes[opt] > best {
			winner = opt
			best = pd.ctx.votes[opt]
		}
	}
	if outcome, ok := pd.ctx.effect.VoteOutcomes[winner]; ok {
		pd.ctx.remaining = append(append([]cards.Effect(nil), outcome...), pd.ctx.remaining...)
	}
	return s.resumeEffects(pd.ctx)
}

func (s *State) resumeSearch(pd *PendingDecision, choice []string) error {
	player := s.Players[pd.PlayerID]
	for _, id := range choice {
		for i, inst := range player.Library {
			if inst.ID == id {
				player.Library = append(player.Library[:i], player.Library[i+1:]...)
				if pd.ctx.effect.ToBattlefield {
					s.EnterBattlefield(inst, pd.PlayerID)
				} else {
					player.Hand = append(player.Hand, inst)
				}
				break
			}
		}
	}
	s.ShuffleLibrary(pd.PlayerID)
	return s.resumeEffects(pd.ctx)
}

func (s *State) resumeSplit(pd *PendingDecision, choice []string) error {
	// The splitter chose pile A; the controller now picks a pile.
	pd.ctx.pileA = append([]string(nil), choice...)
	controller := pd.ctx.item.Controller
	s.Pending = s.newDecision(DecisionPickPile, controller,
		"choose a pile to put into your hand",
		[]string{choicePileA, choicePileB}, 1, 1, false, pd.ctx)
	return nil
}

func (s *State) resumePickPile(pd *PendingDecision, choice []string) error {
	player := s.Players[pd.PlayerID]
	inA := make(map[string]bool, len(pd.ctx.pileA))
	for _, id := range pd.ctx.pileA {
		inA[id] = true
	}
	wantA := choice[0] == choicePileA

	byID := make(map[string]*CardInstance, len(pd.ctx.revealed))
	for _, inst := range player.Library[:len(pd.ctx.revealed)] {
		byID[inst.ID] = inst
	}
	player.Library = player.Library[len(pd.ctx.revealed):]

	for _, id := range pd.ctx.revealed {
		inst := byID[id]
		if inA[id] == wantA {
			player.Hand = append(player.Hand, inst)
		} else {
			player.Graveyard = append(player.Graveyard, inst)
		}
	}
	return s.resumeEffects(pd.ctx)
}

func (s *State) resumeSacrifice(pd *PendingDecision, choice []string) error {
	for _, id := range choice {
		s.sacrificePermanent(id)
	}
	if len(pd.ctx.subjects) > 0 {
		next := pd.ctx.subjects[0]
		pd.ctx.subjects = pd.ctx.subjects[1:]
		if s.suspendSacrifice(pd.ctx, next, pd.ctx.effect) {
			return nil
		}
	}
	return s.resumeEffects(pd.ctx)
}

// resumeEffects re-enters the effect dispatcher with whatever remained
// after the suspension point, then finalizes the stack item if the chain is
// exhausted.
func (s *State) resumeEffects(ctx *decisionContext) error {
	if ctx.item == nil {
		return nil
	}
	pending := s.applyEffects(ctx.item, ctx.remaining, ctx.targetIdx)
	if pending {
		return nil
	}
	s.finalizeItem(ctx.item)
	return nil
}
