package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/counters"
	"github.com/arcanarena/arena-server-go/internal/game/effects"
	"github.com/arcanarena/arena-server-go/internal/game/mana"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// CardInstance is one physical copy of a card. The instance id is the only
// identity that survives zone changes.
type CardInstance struct {
	ID      string
	CardID  string
	OwnerID string
	Token   bool
}

// Permanent wraps a card instance while it is on the battlefield. It is
// created on zone entry and discarded on zone exit; the underlying instance
// may live on in another zone.
type Permanent struct {
	Instance     *CardInstance
	ControllerID string
	Tapped       bool
	Damage       int
	// DeathtouchDamage marks that some of the damage this turn came from a
	// deathtouch source; any amount of it is lethal.
	DeathtouchDamage bool
	Counters         *counters.Counters
	SummoningSick    bool
	// AttachedTo is the instance id this aura or equipment is attached to.
	AttachedTo string
}

// TemporaryEffect is a continuous effect with an explicit expiry.
type TemporaryEffect struct {
	ID           string
	SourceID     string
	ControllerID string
	// AffectsID is the permanent the modifier applies to.
	AffectsID string
	Modifier  effects.Modifier
	// The effect expires once the expiry turn's expiry step has completed.
	ExpiresTurn int
	ExpiresStep rules.Step
}

// PlayerState holds all per-player mutable state.
type PlayerState struct {
	ID          string
	Name        string
	Life        int
	Pool        *mana.Pool
	Hand        []*CardInstance
	Library     []*CardInstance
	Graveyard   []*CardInstance
	LandsPlayed int
	Mulligans   int
	KeptHand    bool
	Conceded    bool
}

// CombatState tracks declared attackers and blockers for the current turn.
type CombatState struct {
	// Attackers in declaration order.
	Attackers []string
	// Blockers maps attacker id to its blockers in declaration order; the
	// order is the attacker's damage assignment order.
	Blockers          map[string][]string
	AttackersDeclared bool
	BlockersDeclared  bool
}

func newCombatState() *CombatState {
	return &CombatState{
		Blockers: make(map[string][]string),
	}
}

// BlockerOf returns the attacker the given creature blocks, if any.
func (c *CombatState) BlockerOf(blockerID string) (string, bool) {
	for attacker, blockers := range c.Blockers {
		for _, b := range blockers {
			if b == blockerID {
				return attacker, true
			}
		}
	}
	return "", false
}

// IsAttacking reports whether the creature is a declared attacker.
func (c *CombatState) IsAttacking(id string) bool {
	for _, a := range c.Attackers {
		if a == id {
			return true
		}
	}
	return false
}

// State is the aggregate root for one game. It is exclusively owned and
// mutated by the Engine; all other components read through projections.
type State struct {
	ID string
	DB *cards.DB

	Players map[string]*PlayerState
	// Order is the turn order; Order[0] is the starting player.
	Order []string

	Turn     *rules.TurnManager
	Stack    *rules.StackManager
	Events   *rules.EventBus
	Triggers *rules.TriggerManager

	Battlefield map[string]*Permanent
	// battlefieldOrder keeps a stable entry order for deterministic
	// enumeration; map iteration alone would randomize legality output.
	battlefieldOrder []string

	Exile map[string]*CardInstance
	// ExileLinks records which source instance caused an exile, for timed
	// returns.
	ExileLinks map[string]string

	Combat  *CombatState
	Temps   []*TemporaryEffect
	Pending *PendingDecision

	RNG *rand.Rand

	Over     bool
	WinnerID string
	Reason   string

	derived map[string]*effects.Snapshot
	// tokenDefs holds definitions minted for tokens at runtime; the shared
	// card database stays read-only.
	tokenDefs map[string]*cards.Definition
}

// PlayerSetup describes one player joining a new game.
type PlayerSetup struct {
	ID   string
	Name string
	// Deck lists card definition ids; order is irrelevant, the library is
	// shuffled during setup.
	Deck []string
}

const (
	startingLife     = 20
	startingHandSize = 7
	maxMulligans     = 7
)

// NewState builds a fresh game: libraries from decklists, shuffled with the
// game's rng, opening hands drawn, and the mulligan decision chain armed.
func NewState(db *cards.DB, seed int64, setups [2]PlayerSetup) (*State, error) {
	if setups[0].ID == setups[1].ID {
		return nil, fmt.Errorf("players must have distinct ids")
	}
	s := &State{
		ID:          uuid.NewString(),
		DB:          db,
		Players:     make(map[string]*PlayerState, 2),
		Order:       []string{setups[0].ID, setups[1].ID},
		Stack:       rules.NewStackManager(),
		Events:      rules.NewEventBus(),
		Triggers:    rules.NewTriggerManager(),
		Battlefield: make(map[string]*Permanent),
		Exile:       make(map[string]*CardInstance),
		ExileLinks:  make(map[string]string),
		Combat:      newCombatState(),
		RNG:         rand.New(rand.NewSource(seed)),
		derived:     make(map[string]*effects.Snapshot),
		tokenDefs:   make(map[string]*cards.Definition),
	}
	s.Turn = rules.NewTurnManager(setups[0].ID)

	// Every published event is checked against registered triggered
	// abilities; matching triggers go straight onto the stack.
	s.Events.Subscribe(func(ev rules.Event) {
		for _, item := range s.Triggers.Handle(ev) {
			s.Stack.Push(item)
		}
	})

	for _, setup := range setups {
		player := &PlayerState{
			ID:   setup.ID,
			Name: setup.Name,
			Life: startingLife,
			Pool: mana.NewPool(),
		}
		for _, cardID := range setup.Deck {
			if _, ok := db.Get(cardID); !ok {
				return nil, fmt.Errorf("unknown card id %q in deck of %s", cardID, setup.ID)
			}
			player.Library = append(player.Library, &CardInstance{
				ID:      uuid.NewString(),
				CardID:  cardID,
				OwnerID: setup.ID,
			})
		}
		s.RNG.Shuffle(len(player.Library), func(i, j int) {
			player.Library[i], player.Library[j] = player.Library[j], player.Library[i]
		})
		s.Players[setup.ID] = player
	}

	for _, id := range s.Order {
		for i := 0; i < startingHandSize; i++ {
			s.drawCardSilent(id)
		}
	}

	s.Pending = newMulliganDecision(s, s.Order[0])
	return s, nil
}

// Player returns the player state for an id.
func (s *State) Player(id string) (*PlayerState, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// Opponent returns the other player's id.
func (s *State) Opponent(id string) string {
	if s.Order[0] == id {
		return s.Order[1]
	}
	return s.Order[0]
}

// ActivePlayer returns the player whose turn it is.
func (s *State) ActivePlayer() string {
	return s.Turn.ActivePlayer()
}

// Definition looks up the card definition for an instance, consulting the
// token side table for minted token definitions.
func (s *State) Definition(inst *CardInstance) *cards.Definition {
	if def, ok := s.DB.Get(inst.CardID); ok {
		return def
	}
	if def, ok := s.tokenDefs[inst.CardID]; ok {
		return def
	}
	panic(fmt.Sprintf("instance %s references unknown card %s", inst.ID, inst.CardID))
}

// ensureTokenDef mints (or reuses) a definition for a token spec and
// returns its card id.
func (s *State) ensureTokenDef(spec *cards.TokenSpec) string {
	id := "token:" + spec.Name
	if _, ok := s.tokenDefs[id]; ok {
		return id
	}
	types := spec.Types
	if len(types) == 0 {
		types = []cards.Type{cards.TypeCreature}
	}
	s.tokenDefs[id] = &cards.Definition{
		ID:        id,
		Name:      spec.Name,
		Types:     types,
		Subtypes:  spec.Subtypes,
		Power:     spec.Power,
		Toughness: spec.Toughness,
		Keywords:  spec.Keywords,
	}
	return id
}

// Permanents returns battlefield permanents in stable entry order.
func (s *State) Permanents() []*Permanent {
	out := make([]*Permanent, 0, len(s.Battlefield))
	for _, id := range s.battlefieldOrder {
		if perm, ok := s.Battlefield[id]; ok {
			out = append(out, perm)
		}
	}
	return out
}

// FindInstance locates a card instance in any zone and names the zone it
// was found in.
func (s *State) FindInstance(id string) (*CardInstance, string) {
	if perm, ok := s.Battlefield[id]; ok {
		return perm.Instance, "BATTLEFIELD"
	}
	for _, player := range s.Players {
		for _, inst := range player.Hand {
			if inst.ID == id {
				return inst, "HAND"
			}
		}
		for _, inst := range player.Library {
			if inst.ID == id {
				return inst, "LIBRARY"
			}
		}
		for _, inst := range player.Graveyard {
			if inst.ID == id {
				return inst, "GRAVEYARD"
			}
		}
	}
	if inst, ok := s.Exile[id]; ok {
		return inst, "EXILE"
	}
	for _, item := range s.Stack.List() {
		if item.InstanceID == id {
			inst := &CardInstance{ID: item.InstanceID, CardID: item.CardID, OwnerID: item.Controller}
			return inst, "STACK"
		}
	}
	return nil, ""
}

// removeFromHand removes and returns an instance from a player's hand.
func (s *State) removeFromHand(playerID, instanceID string) (*CardInstance, bool) {
	player := s.Players[playerID]
	for i, inst := range player.Hand {
		if inst.ID == instanceID {
			player.Hand = append(player.Hand[:i], player.Hand[i+1:]...)
			return inst, true
		}
	}
	return nil, false
}

// removeFromGraveyard removes and returns an instance from a graveyard.
func (s *State) removeFromGraveyard(playerID, instanceID string) (*CardInstance, bool) {
	player := s.Players[playerID]
	for i, inst := range player.Graveyard {
		if inst.ID == instanceID {
			player.Graveyard = append(player.Graveyard[:i], player.Graveyard[i+1:]...)
			return inst, true
		}
	}
	return nil, false
}

// drawCardSilent moves the top library card to the hand without publishing
// events. Used during setup and mulligans.
func (s *State) drawCardSilent(playerID string) bool {
	player := s.Players[playerID]
	if len(player.Library) == 0 {
		return false
	}
	inst := player.Library[0]
	player.Library = player.Library[1:]
	player.Hand = append(player.Hand, inst)
	return true
}

// DrawCard draws one card for the player, publishing the draw event.
// Drawing from an empty library loses the game on the spot.
func (s *State) DrawCard(playerID string) {
	player := s.Players[playerID]
	if len(player.Library) == 0 {
		s.endGame(s.Opponent(playerID), fmt.Sprintf("%s drew from an empty library", player.Name))
		return
	}
	s.drawCardSilent(playerID)
	s.Events.Publish(rules.Event{Type: rules.EventDrewCard, PlayerID: playerID})
}

// EnterBattlefield creates a permanent for the instance under the given
// controller, registers its triggered abilities, and publishes the
// enters-battlefield event.
func (s *State) EnterBattlefield(inst *CardInstance, controllerID string) *Permanent {
	def := s.Definition(inst)
	perm := &Permanent{
		Instance:      inst,
		ControllerID:  controllerID,
		Counters:      counters.New(),
		SummoningSick: def.HasType(cards.TypeCreature),
	}
	s.Battlefield[inst.ID] = perm
	s.battlefieldOrder = append(s.battlefieldOrder, inst.ID)
	s.registerTriggers(perm, def)
	s.Events.Publish(rules.Event{
		Type:       rules.EventEntersBattlefield,
		TargetID:   inst.ID,
		Controller: controllerID,
	})
	return perm
}

// LeaveBattlefield discards the permanent wrapper and unregisters its
// triggers. The caller decides where the instance goes next.
func (s *State) LeaveBattlefield(instanceID string) (*CardInstance, bool) {
	perm, ok := s.Battlefield[instanceID]
	if !ok {
		return nil, false
	}
	delete(s.Battlefield, instanceID)
	for i, id := range s.battlefieldOrder {
		if id == instanceID {
			s.battlefieldOrder = append(s.battlefieldOrder[:i], s.battlefieldOrder[i+1:]...)
			break
		}
	}
	s.Triggers.UnregisterSource(instanceID)
	// Anything attached to the departed permanent is now orphaned; the
	// next state-based check deals with it.
	return perm.Instance, true
}

// MoveToGraveyard moves an instance to its owner's graveyard. Tokens cease
// to exist instead.
func (s *State) MoveToGraveyard(inst *CardInstance) {
	if inst.Token {
		return
	}
	owner := s.Players[inst.OwnerID]
	owner.Graveyard = append(owner.Graveyard, inst)
}

// MoveToExile moves an instance to exile, optionally linked to the source
// instance that caused the exile.
func (s *State) MoveToExile(inst *CardInstance, sourceID string) {
	if inst.Token {
		return
	}
	s.Exile[inst.ID] = inst
	if sourceID != "" {
		s.ExileLinks[inst.ID] = sourceID
	}
}

// ShuffleLibrary shuffles the player's library with the game rng.
func (s *State) ShuffleLibrary(playerID string) {
	lib := s.Players[playerID].Library
	s.RNG.Shuffle(len(lib), func(i, j int) {
		lib[i], lib[j] = lib[j], lib[i]
	})
}

// AddTemporaryEffect registers a continuous effect lasting until the end of
// the current turn.
func (s *State) AddTemporaryEffect(sourceID, controllerID, affectsID string, mod effects.Modifier) {
	s.Temps = append(s.Temps, &TemporaryEffect{
		ID:           uuid.NewString(),
		SourceID:     sourceID,
		ControllerID: controllerID,
		AffectsID:    affectsID,
		Modifier:     mod,
		ExpiresTurn:  s.Turn.TurnNumber(),
		ExpiresStep:  rules.StepEnd,
	})
}

// expireTemporaryEffects drops effects whose expiry has passed.
func (s *State) expireTemporaryEffects() {
	turn := s.Turn.TurnNumber()
	step := s.Turn.CurrentStep()
	kept := s.Temps[:0]
	for _, te := range s.Temps {
		if te.ExpiresTurn < turn {
			continue
		}
		if te.ExpiresTurn == turn && step > te.ExpiresStep {
			continue
		}
		kept = append(kept, te)
	}
	s.Temps = kept
}

// endGame flips the one-way game-over flag. Subsequent calls are ignored;
// the first result stands.
func (s *State) endGame(winnerID, reason string) {
	if s.Over {
		return
	}
	s.Over = true
	s.WinnerID = winnerID
	s.Reason = reason
	s.Pending = nil
	s.Events.Publish(rules.Event{Type: rules.EventGameOver, PlayerID: winnerID})
}

// NewToken creates a token instance and puts it onto the battlefield. The
// token's definition must already be registered in the card database.
func (s *State) NewToken(cardID, controllerID string) *Permanent {
	inst := &CardInstance{
		ID:      uuid.NewString(),
		CardID:  cardID,
		OwnerID: controllerID,
		Token:   true,
	}
	return s.EnterBattlefield(inst, controllerID)
}
