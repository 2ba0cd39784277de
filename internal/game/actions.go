package game

import (
	"fmt"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// Validate checks an action against current state without mutating
// anything. A nil return guarantees the matching Apply will succeed.
func (s *State) Validate(a Action) error {
	if _, ok := s.Players[a.ActorID]; !ok {
		return fmt.Errorf("unknown player %s", a.ActorID)
	}
	if s.Over {
		return fmt.Errorf("the game is over")
	}

	if a.Type == ActionConcede {
		return nil
	}

	if s.Pending != nil {
		if a.Type != ActionResolveDecision {
			return fmt.Errorf("a decision is pending; only its resolution is accepted")
		}
		if a.ActorID != s.Pending.PlayerID {
			return fmt.Errorf("the pending decision belongs to another player")
		}
		return s.Pending.validateChoice(a.Choice)
	}
	if a.Type == ActionResolveDecision {
		return fmt.Errorf("no decision is pending")
	}

	if declType, declPlayer, waiting := s.pendingCombatDeclaration(); waiting {
		if a.Type != declType {
			return fmt.Errorf("waiting for %s from %s", declType, declPlayer)
		}
		if a.ActorID != declPlayer {
			return fmt.Errorf("%s must be submitted by %s", declType, declPlayer)
		}
	}

	switch a.Type {
	case ActionPlayLand:
		return s.validatePlayLand(a)
	case ActionTapForMana:
		return s.validateTapForMana(a)
	case ActionCastSpell:
		if err := s.requirePriority(a.ActorID); err != nil {
			return err
		}
		return s.validateCast(a)
	case ActionActivateAbility:
		if err := s.requirePriority(a.ActorID); err != nil {
			return err
		}
		return s.validateActivate(a)
	case ActionDeclareAttackers:
		if s.Turn.CurrentStep() != rules.StepDeclareAttackers {
			return fmt.Errorf("not the declare attackers step")
		}
		if a.ActorID != s.ActivePlayer() {
			return fmt.Errorf("only the active player declares attackers")
		}
		if s.Combat.AttackersDeclared {
			return fmt.Errorf("attackers already declared")
		}
		return s.validateAttackers(a.Attackers)
	case ActionDeclareBlockers:
		if s.Turn.CurrentStep() != rules.StepDeclareBlockers {
			return fmt.Errorf("not the declare blockers step")
		}
		if a.ActorID != s.Opponent(s.ActivePlayer()) {
			return fmt.Errorf("only the defending player declares blockers")
		}
		if s.Combat.BlockersDeclared {
			return fmt.Errorf("blockers already declared")
		}
		return s.validateBlockers(a.Blockers)
	case ActionPassPriority:
		return s.requirePriority(a.ActorID)
	case ActionSkipCombat:
		if err := s.requirePriority(a.ActorID); err != nil {
			return err
		}
		if a.ActorID != s.ActivePlayer() || s.Turn.CurrentStep() != rules.StepMain1 {
			return fmt.Errorf("combat can only be skipped from your first main phase")
		}
		if !s.Stack.IsEmpty() {
			return fmt.Errorf("the stack must be empty")
		}
		return nil
	case ActionSkipMain2:
		if err := s.requirePriority(a.ActorID); err != nil {
			return err
		}
		if a.ActorID != s.ActivePlayer() || s.Turn.CurrentStep() != rules.StepMain2 {
			return fmt.Errorf("only the second main phase can be skipped")
		}
		if !s.Stack.IsEmpty() {
			return fmt.Errorf("the stack must be empty")
		}
		return nil
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// Apply validates and then executes an action. Failed validation leaves the
// state untouched.
func (s *State) Apply(a Action) ResolutionResult {
	if err := s.Validate(a); err != nil {
		return failure(err.Error())
	}

	switch a.Type {
	case ActionPlayLand:
		s.applyPlayLand(a)
	case ActionTapForMana:
		s.applyTapForMana(a)
	case ActionCastSpell:
		s.applyCast(a)
		s.Turn.ResetPasses()
		s.Turn.SetPriority(s.Opponent(a.ActorID))
	case ActionActivateAbility:
		s.applyActivate(a)
		s.Turn.ResetPasses()
		def := s.definitionForActivation(a)
		if ability, err := findActivated(def, a.AbilityID); err == nil && !ability.ManaAbility {
			s.Turn.SetPriority(s.Opponent(a.ActorID))
		}
	case ActionDeclareAttackers:
		s.declareAttackers(a.Attackers)
		s.Turn.ResetPasses()
		s.Turn.SetPriority(s.ActivePlayer())
	case ActionDeclareBlockers:
		s.declareBlockers(a.Blockers)
		s.Turn.ResetPasses()
		s.Turn.SetPriority(s.ActivePlayer())
	case ActionPassPriority:
		s.applyPass(a)
	case ActionResolveDecision:
		if err := s.resolveDecision(a.Choice); err != nil {
			return ResolutionResult{Status: StatusError, Message: err.Error()}
		}
		s.checkStateBasedActions()
	case ActionConcede:
		s.Players[a.ActorID].Conceded = true
		s.checkWinConditions()
	case ActionSkipCombat:
		s.skipToStep(rules.StepMain2)
	case ActionSkipMain2:
		s.skipToStep(rules.StepEnd)
	}

	return success(string(a.Type), nil)
}

// definitionForActivation resolves the definition behind an activation even
// when paying the cost removed the source from the battlefield.
func (s *State) definitionForActivation(a Action) *cards.Definition {
	if perm, ok := s.Battlefield[a.ObjectID]; ok {
		return s.Definition(perm.Instance)
	}
	inst, _ := s.FindInstance(a.ObjectID)
	if inst != nil {
		return s.Definition(inst)
	}
	return &cards.Definition{}
}

// requirePriority rejects actions from anyone but the priority holder.
func (s *State) requirePriority(actorID string) error {
	if s.Turn.PriorityPlayer() != actorID {
		return fmt.Errorf("%s does not have priority", actorID)
	}
	return nil
}

// pendingCombatDeclaration reports whether the game is waiting on a combat
// declaration, and from whom.
func (s *State) pendingCombatDeclaration() (ActionType, string, bool) {
	switch s.Turn.CurrentStep() {
	case rules.StepDeclareAttackers:
		if !s.Combat.AttackersDeclared {
			return ActionDeclareAttackers, s.ActivePlayer(), true
		}
	case rules.StepDeclareBlockers:
		if len(s.Combat.Attackers) > 0 && !s.Combat.BlockersDeclared {
			return ActionDeclareBlockers, s.Opponent(s.ActivePlayer()), true
		}
	}
	return "", "", false
}

func (s *State) validatePlayLand(a Action) error {
	actor := a.ActorID
	if err := s.requirePriority(actor); err != nil {
		return err
	}
	if !s.sorceryWindow(actor) {
		return fmt.Errorf("lands can only be played during your main phase with an empty stack")
	}
	inst := s.instanceInHand(actor, a.ObjectID)
	if inst == nil {
		return fmt.Errorf("card %s is not in your hand", a.ObjectID)
	}
	if !s.Definition(inst).HasType(cards.TypeLand) {
		return fmt.Errorf("%s is not a land", a.ObjectID)
	}
	if s.Players[actor].LandsPlayed >= 1 {
		return fmt.Errorf("you already played a land this turn")
	}
	return nil
}

// applyPlayLand puts the land onto the battlefield. Lands never use the
// stack and cannot be responded to.
func (s *State) applyPlayLand(a Action) {
	inst, _ := s.removeFromHand(a.ActorID, a.ObjectID)
	s.Players[a.ActorID].LandsPlayed++
	s.EnterBattlefield(inst, a.ActorID)
	s.Turn.ResetPasses()
	s.DeriveAll()
	s.checkStateBasedActions()
}

// manaAbilityOf finds the mana ability a TAP_FOR_MANA action refers to.
func manaAbilityOf(def *cards.Definition, abilityID string) (cards.ActivatedAbility, error) {
	for _, ab := range def.Activated {
		if !ab.ManaAbility {
			continue
		}
		if abilityID == "" || ab.ID == abilityID {
			return ab, nil
		}
	}
	return cards.ActivatedAbility{}, fmt.Errorf("%s has no mana ability", def.Name)
}

func (s *State) validateTapForMana(a Action) error {
	actor := a.ActorID
	if err := s.requirePriority(actor); err != nil {
		return err
	}
	perm, ok := s.Battlefield[a.ObjectID]
	if !ok {
		return fmt.Errorf("%s is not on the battlefield", a.ObjectID)
	}
	if perm.ControllerID != actor {
		return fmt.Errorf("you do not control %s", a.ObjectID)
	}
	def := s.Definition(perm.Instance)
	ability, err := manaAbilityOf(def, a.AbilityID)
	if err != nil {
		return err
	}
	return s.validateAdditionalCosts(actor, a.ObjectID, ability.Costs, a.AdditionalPays)
}

// applyTapForMana pays the ability's costs and adds the mana immediately.
// Mana abilities bypass the stack.
func (s *State) applyTapForMana(a Action) {
	perm := s.Battlefield[a.ObjectID]
	def := s.Definition(perm.Instance)
	ability, _ := manaAbilityOf(def, a.AbilityID)

	s.payAdditionalCosts(a.ActorID, a.ObjectID, ability.Costs, a.AdditionalPays)
	item := rules.StackItem{Controller: a.ActorID, SourceID: a.ObjectID}
	s.applyEffects(&item, ability.Effects, 0)
	s.Turn.ResetPasses()
}

// applyPass records a priority pass. Two consecutive passes resolve the top
// of the stack, or advance the step when the stack is empty.
func (s *State) applyPass(a Action) {
	if s.Turn.RecordPass() < 2 {
		s.Turn.SetPriority(s.Opponent(a.ActorID))
		return
	}
	s.Turn.ResetPasses()
	if !s.Stack.IsEmpty() {
		s.resolveTopOfStack()
		s.Turn.SetPriority(s.ActivePlayer())
		return
	}
	s.stepForward()
}
