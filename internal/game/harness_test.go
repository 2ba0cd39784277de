package game

import (
	"strconv"
	"testing"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/counters"
	"github.com/arcanarena/arena-server-go/internal/game/mana"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

const (
	alice = "alice"
	bob   = "bob"
)

// testDB builds the fixed card pool the game tests run against.
func testDB() *cards.DB {
	db := cards.NewDB()

	db.MustRegister(&cards.Definition{
		ID: "forest", Name: "Forest", Types: []cards.Type{cards.TypeLand},
		Subtypes: []string{"Forest"},
		Activated: []cards.ActivatedAbility{{
			ID: "forest-mana", Text: "{T}: Add {G}.", ManaAbility: true,
			Costs: []cards.Cost{{Kind: cards.CostTapSelf}},
			Effects: []cards.Effect{{
				Kind: cards.EffectAddMana,
				Mana: &cards.ManaProduction{Colors: map[mana.Color]int{mana.Green: 1}},
			}},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "mountain", Name: "Mountain", Types: []cards.Type{cards.TypeLand},
		Subtypes: []string{"Mountain"},
		Activated: []cards.ActivatedAbility{{
			ID: "mountain-mana", Text: "{T}: Add {R}.", ManaAbility: true,
			Costs: []cards.Cost{{Kind: cards.CostTapSelf}},
			Effects: []cards.Effect{{
				Kind: cards.EffectAddMana,
				Mana: &cards.ManaProduction{Colors: map[mana.Color]int{mana.Red: 1}},
			}},
		}},
	})

	db.MustRegister(&cards.Definition{
		ID: "bear", Name: "Grizzly Bears", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Bear"}, Cost: mana.MustParse("{1}{G}"), Power: 2, Toughness: 2,
	})
	db.MustRegister(&cards.Definition{
		ID: "giant", Name: "Hill Giant", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Giant"}, Cost: mana.MustParse("{3}{R}"), Power: 4, Toughness: 4,
	})
	db.MustRegister(&cards.Definition{
		ID: "flyer", Name: "Wind Drake", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Drake"}, Cost: mana.MustParse("{2}{U}"), Power: 2, Toughness: 2,
		Keywords: []cards.Keyword{cards.KeywordFlying},
	})
	db.MustRegister(&cards.Definition{
		ID: "reacher", Name: "Giant Spider", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Spider"}, Cost: mana.MustParse("{3}{G}"), Power: 2, Toughness: 4,
		Keywords: []cards.Keyword{cards.KeywordReach},
	})
	db.MustRegister(&cards.Definition{
		ID: "hasty", Name: "Raging Goblin", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Goblin"}, Cost: mana.MustParse("{R}"), Power: 1, Toughness: 1,
		Keywords: []cards.Keyword{cards.KeywordHaste},
	})
	db.MustRegister(&cards.Definition{
		ID: "lifelinker", Name: "Ajani's Sunstriker", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Cat"}, Cost: mana.MustParse("{W}{W}"), Power: 2, Toughness: 2,
		Keywords: []cards.Keyword{cards.KeywordLifelink},
	})
	db.MustRegister(&cards.Definition{
		ID: "deathtoucher", Name: "Typhoid Rats", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Rat"}, Cost: mana.MustParse("{B}"), Power: 1, Toughness: 1,
		Keywords: []cards.Keyword{cards.KeywordDeathtouch},
	})
	db.MustRegister(&cards.Definition{
		ID: "menacer", Name: "Boggart Brute", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Goblin"}, Cost: mana.MustParse("{2}{R}"), Power: 3, Toughness: 2,
		Keywords: []cards.Keyword{cards.KeywordMenace},
	})
	db.MustRegister(&cards.Definition{
		ID: "vigilant", Name: "Serra Avenger", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Angel"}, Cost: mana.MustParse("{W}{W}"), Power: 3, Toughness: 3,
		Keywords: []cards.Keyword{cards.KeywordVigilance, cards.KeywordFlying},
	})
	db.MustRegister(&cards.Definition{
		ID: "trampler", Name: "Craw Wurm", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Wurm"}, Cost: mana.MustParse("{4}{G}{G}"), Power: 6, Toughness: 4,
		Keywords: []cards.Keyword{cards.KeywordTrample},
	})
	db.MustRegister(&cards.Definition{
		ID: "firststriker", Name: "Youthful Knight", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Knight"}, Cost: mana.MustParse("{1}{W}"), Power: 2, Toughness: 1,
		Keywords: []cards.Keyword{cards.KeywordFirstStrike},
	})
	db.MustRegister(&cards.Definition{
		ID: "wall", Name: "Wall of Stone", Types: []cards.Type{cards.TypeCreature},
		Subtypes: []string{"Wall"}, Cost: mana.MustParse("{1}{R}{R}"), Power: 0, Toughness: 8,
		Keywords: []cards.Keyword{cards.KeywordDefender},
	})

	db.MustRegister(&cards.Definition{
		ID: "bolt", Name: "Lightning Bolt", Types: []cards.Type{cards.TypeInstant},
		Cost: mana.MustParse("{R}"),
		Effects: []cards.Effect{{
			Kind: cards.EffectDealDamage, Amount: 3,
			Target: &cards.TargetSpec{Zone: cards.ZoneBattlefield, Selector: cards.Selector{AnyTarget: true}},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "growth", Name: "Giant Growth", Types: []cards.Type{cards.TypeInstant},
		Cost: mana.MustParse("{G}"),
		Effects: []cards.Effect{{
			Kind: cards.EffectModifyPT, Power: 3, Toughness: 3,
			Target: &cards.TargetSpec{Zone: cards.ZoneBattlefield, Selector: cards.AnyCreature},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "cancel", Name: "Cancel", Types: []cards.Type{cards.TypeInstant},
		Cost: mana.MustParse("{1}{U}{U}"),
		Effects: []cards.Effect{{
			Kind:   cards.EffectCounterSpell,
			Target: &cards.TargetSpec{Zone: cards.ZoneStack},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "murder", Name: "Murder", Types: []cards.Type{cards.TypeSorcery},
		Cost: mana.MustParse("{1}{B}{B}"),
		Effects: []cards.Effect{{
			Kind:   cards.EffectDestroy,
			Target: &cards.TargetSpec{Zone: cards.ZoneBattlefield, Selector: cards.AnyCreature},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "divination", Name: "Divination", Types: []cards.Type{cards.TypeSorcery},
		Cost:    mana.MustParse("{2}{U}"),
		Effects: []cards.Effect{{Kind: cards.EffectDrawCards, Amount: 2}},
	})
	db.MustRegister(&cards.Definition{
		ID: "mindrot", Name: "Mind Rot", Types: []cards.Type{cards.TypeSorcery},
		Cost: mana.MustParse("{2}{B}"),
		Effects: []cards.Effect{{
			Kind: cards.EffectDiscard, Amount: 2,
			Target: &cards.TargetSpec{Selector: cards.AnyPlayer},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "fireball", Name: "Fireball", Types: []cards.Type{cards.TypeSorcery},
		Cost: mana.MustParse("{X}{R}"),
		Effects: []cards.Effect{{
			Kind: cards.EffectDealDamage, UsesX: true,
			Target: &cards.TargetSpec{Zone: cards.ZoneBattlefield, Selector: cards.Selector{AnyTarget: true}},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "preordain", Name: "Preordain", Types: []cards.Type{cards.TypeSorcery},
		Cost: mana.MustParse("{U}"),
		Effects: []cards.Effect{
			{Kind: cards.EffectScry, Amount: 2},
			{Kind: cards.EffectDrawCards, Amount: 1},
		},
	})
	db.MustRegister(&cards.Definition{
		ID: "anthem", Name: "Glorious Anthem", Types: []cards.Type{cards.TypeEnchantment},
		Cost: mana.MustParse("{1}{W}{W}"),
		Static: []cards.StaticAbility{{
			ID: "anthem-boost", Kind: cards.StaticPTBoost, Scope: cards.ScopeYourCreatures,
			Power: 1, Toughness: 1,
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "pacifism", Name: "Pacifism", Types: []cards.Type{cards.TypeEnchantment},
		Subtypes: []string{"Aura"}, Cost: mana.MustParse("{1}{W}"),
		AttachTo: &cards.Selector{Types: []cards.Type{cards.TypeCreature}},
		Static: []cards.StaticAbility{{
			ID: "pacifism-lock", Kind: cards.StaticCannotAttack, Scope: cards.ScopeSelf,
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "golem", Name: "Darksteel Myr", Types: []cards.Type{cards.TypeCreature},
		Cost: mana.MustParse("{3}"), Power: 0, Toughness: 1,
		Keywords: []cards.Keyword{cards.KeywordIndestructible},
	})
	db.MustRegister(&cards.Definition{
		ID: "muster", Name: "Raise the Alarm", Types: []cards.Type{cards.TypeInstant},
		Cost: mana.MustParse("{1}{W}"),
		Effects: []cards.Effect{{
			Kind: cards.EffectCreateToken,
			Token: &cards.TokenSpec{
				Name: "Soldier", Types: []cards.Type{cards.TypeCreature},
				Subtypes: []string{"Soldier"}, Power: 1, Toughness: 1, Count: 2,
			},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "council", Name: "Council's Judgment", Types: []cards.Type{cards.TypeSorcery},
		Cost: mana.MustParse("{1}{W}"),
		Effects: []cards.Effect{{
			Kind:        cards.EffectVote,
			VoteOptions: []string{"grace", "condemnation"},
			VoteOutcomes: map[string][]cards.Effect{
				"grace":        {{Kind: cards.EffectGainLife, Amount: 2}},
				"condemnation": {{Kind: cards.EffectDrawCards, Amount: 1}},
			},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "tutor", Name: "Sylvan Tutor", Types: []cards.Type{cards.TypeSorcery},
		Cost: mana.MustParse("{G}"),
		Effects: []cards.Effect{{
			Kind: cards.EffectSearchLibrary, Amount: 1,
			Filter: &cards.Selector{Types: []cards.Type{cards.TypeLand}},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "factfiction", Name: "Fact or Fiction", Types: []cards.Type{cards.TypeInstant},
		Cost:    mana.MustParse("{3}{U}"),
		Effects: []cards.Effect{{Kind: cards.EffectRevealSplit, Amount: 5}},
	})
	db.MustRegister(&cards.Definition{
		ID: "battlegrowth", Name: "Battlegrowth", Types: []cards.Type{cards.TypeInstant},
		Cost: mana.MustParse("{G}"),
		Effects: []cards.Effect{{
			Kind: cards.EffectAddCounters, Amount: 1, CounterType: counters.PlusOne,
			Target: &cards.TargetSpec{Zone: cards.ZoneBattlefield, Selector: cards.AnyCreature},
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "voice", Name: "Tormenting Voice", Types: []cards.Type{cards.TypeSorcery},
		Cost:            mana.MustParse("{1}{R}"),
		AdditionalCosts: []cards.Cost{{Kind: cards.CostDiscardCards, Amount: 1}},
		Effects:         []cards.Effect{{Kind: cards.EffectDrawCards, Amount: 2}},
	})
	db.MustRegister(&cards.Definition{
		ID: "skytether", Name: "Sky Tether", Types: []cards.Type{cards.TypeEnchantment},
		Subtypes: []string{"Aura"}, Cost: mana.MustParse("{W}"),
		AttachTo: &cards.Selector{
			Types:    []cards.Type{cards.TypeCreature},
			Keywords: []cards.Keyword{cards.KeywordFlying},
		},
		Static: []cards.StaticAbility{{
			ID: "skytether-lock", Kind: cards.StaticCannotAttack, Scope: cards.ScopeSelf,
		}},
	})
	db.MustRegister(&cards.Definition{
		ID: "edict", Name: "Diabolic Edict", Types: []cards.Type{cards.TypeInstant},
		Cost: mana.MustParse("{1}{B}"),
		Effects: []cards.Effect{{
			Kind: cards.EffectSacrifice, Amount: 1,
			Target: &cards.TargetSpec{Selector: cards.AnyPlayer},
			Filter: &cards.Selector{Types: []cards.Type{cards.TypeCreature}},
		}},
	})

	return db
}

// landDeck returns a deck of n forests; big enough that draw-out never
// interferes with a test.
func landDeck(n int) []string {
	deck := make([]string, n)
	for i := range deck {
		deck[i] = "forest"
	}
	return deck
}

// newTestState starts a game with both hands kept, ready at turn 1 untap.
func newTestState(t *testing.T, deckA, deckB []string) *State {
	t.Helper()
	s, err := NewState(testDB(), 7, [2]PlayerSetup{
		{ID: alice, Name: "Alice", Deck: deckA},
		{ID: bob, Name: "Bob", Deck: deckB},
	})
	if err != nil {
		t.Fatalf("failed to start game: %v", err)
	}
	keepHands(t, s)
	return s
}

// keepHands resolves the opening mulligan chain by keeping every hand.
func keepHands(t *testing.T, s *State) {
	t.Helper()
	for s.Pending != nil && s.Pending.Kind == DecisionMulligan {
		res := s.Apply(Action{
			Type:    ActionResolveDecision,
			ActorID: s.Pending.PlayerID,
			Choice:  []string{choiceKeep},
		})
		if res.Status != StatusSuccess {
			t.Fatalf("keeping hand failed: %s", res.Message)
		}
	}
}

// putPermanent places a fresh instance of the card directly onto the
// battlefield under the given controller, without summoning sickness.
func putPermanent(t *testing.T, s *State, cardID, controllerID string) string {
	t.Helper()
	if _, ok := s.DB.Get(cardID); !ok {
		t.Fatalf("unknown test card %s", cardID)
	}
	inst := &CardInstance{ID: "perm-" + cardID + "-" + newTestID(s), CardID: cardID, OwnerID: controllerID}
	perm := s.EnterBattlefield(inst, controllerID)
	perm.SummoningSick = false
	s.DeriveAll()
	return inst.ID
}

// putSickPermanent places a creature that entered this turn.
func putSickPermanent(t *testing.T, s *State, cardID, controllerID string) string {
	t.Helper()
	id := putPermanent(t, s, cardID, controllerID)
	s.Battlefield[id].SummoningSick = true
	return id
}

// putInHand adds a fresh instance of the card to the player's hand.
func putInHand(t *testing.T, s *State, cardID, playerID string) string {
	t.Helper()
	if _, ok := s.DB.Get(cardID); !ok {
		t.Fatalf("unknown test card %s", cardID)
	}
	inst := &CardInstance{ID: "hand-" + cardID + "-" + newTestID(s), CardID: cardID, OwnerID: playerID}
	s.Players[playerID].Hand = append(s.Players[playerID].Hand, inst)
	return inst.ID
}

var testIDCounter int

func newTestID(_ *State) string {
	testIDCounter++
	return strconv.Itoa(testIDCounter)
}

// addMana fills the player's pool directly.
func addMana(s *State, playerID string, color mana.Color, amount int) {
	s.Players[playerID].Pool.Add(color, amount)
}

/// passOrDeclare submits whichever action moves the game along: an empty
// combat declaration when one is owed, a priority pass otherwise.
func passOrDeclare(t *testing.T, s *State) {
	t.Helper()
	if declType, declPlayer, waiting := s.pendingCombatDeclaration(); waiting {
		var a Action
		if declType == ActionDeclareAttackers {
			a = Action{Type: declType, ActorID: declPlayer, Attackers: []string{}}
		} else {
			a = Action{Type: declType, ActorID: declPlayer, Blockers: map[string][]string{}}
		}
		if res := s.Apply(a); res.Status != StatusSuccess {
			t.Fatalf("combat declaration failed: %s", res.Message)
		}
		return
	}
	res := s.Apply(Action{Type: ActionPassPriority, ActorID: s.Turn.PriorityPlayer()})
	if res.Status != StatusSuccess {
		t.Fatalf("pass failed: %s", res.Message)
	}
}

// advanceToStep passes priority with both players until the target step of
// the current turn is reached. Returns immediately when the step is already
// current.
func advanceToStep(t *testing.T, s *State, target rules.Step) {
	t.Helper()
	for i := 0; i < 64; i++ {
		if s.Turn.CurrentStep() == target {
			return
		}
		passOrDeclare(t, s)
	}
	t.Fatalf("never reached step %s, stuck at %s", target, s.Turn.CurrentStep())
}

// advanceToNextTurn crosses the turn boundary and stops at the target step
// of the following turn.
func advanceToNextTurn(t *testing.T, s *State, target rules.Step) {
	t.Helper()
	turn := s.Turn.TurnNumber()
	for i := 0; i < 64; i++ {
		if s.Turn.TurnNumber() != turn {
			advanceToStep(t, s, target)
			return
		}
		passOrDeclare(t, s)
	}
	t.Fatalf("never left turn %d, stuck at %s", turn, s.Turn.CurrentStep())
}

// mustApply submits an action and fails the test unless it succeeds.
func mustApply(t *testing.T, s *State, a Action) {
	t.Helper()
	res := s.Apply(a)
	if res.Status != StatusSuccess {
		t.Fatalf("%s by %s failed: %s", a.Type, a.ActorID, res.Message)
	}
}

// bothPass passes priority once for each player.
func bothPass(t *testing.T, s *State) {
	t.Helper()
	mustApply(t, s, Action{Type: ActionPassPriority, ActorID: s.Turn.PriorityPlayer()})
	mustApply(t, s, Action{Type: ActionPassPriority, ActorID: s.Turn.PriorityPlayer()})
}
