package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/counters"
	"github.com/arcanarena/arena-server-go/internal/game/mana"
	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// viewFingerprint serializes both players' visible states for deep
// equality comparison around failed actions.
func viewFingerprint(t *testing.T, s *State) string {
	t.Helper()
	a, err := json.Marshal(s.View(alice))
	require.NoError(t, err)
	b, err := json.Marshal(s.View(bob))
	require.NoError(t, err)
	return string(a) + "|" + string(b)
}

func TestCastCreatureResolvesToBattlefield(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	bearID := putInHand(t, s, "bear", alice)
	addMana(s, alice, mana.Green, 2)
	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: bearID})

	require.Equal(t, 1, s.Stack.Size())
	bothPass(t, s)

	perm, ok := s.Battlefield[bearID]
	require.True(t, ok, "creature spell resolves onto the battlefield")
	assert.True(t, perm.SummoningSick)
	assert.Equal(t, alice, perm.ControllerID)
}

func TestCastWithoutManaFailsAndLeavesStateUnchanged(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)
	bearID := putInHand(t, s, "bear", alice)

	before := viewFingerprint(t, s)
	res := s.Apply(Action{Type: ActionCastSpell, ActorID: alice, ObjectID: bearID})

	assert.Equal(t, StatusFailure, res.Status)
	assert.Equal(t, before, viewFingerprint(t, s), "failed validation must not mutate state")
}

func TestSorceryTimingRejectedOnOpponentTurn(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	divID := putInHand(t, s, "divination", bob)
	addMana(s, bob, mana.Blue, 3)

	// Bob gets priority by Alice passing, but it is not his main phase.
	mustApply(t, s, Action{Type: ActionPassPriority, ActorID: alice})
	res := s.Apply(Action{Type: ActionCastSpell, ActorID: bob, ObjectID: divID})
	assert.Equal(t, StatusFailure, res.Status)
}

func TestInstantCanRespondOnStack(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	divID := putInHand(t, s, "divination", alice)
	cancelID := putInHand(t, s, "cancel", bob)
	addMana(s, alice, mana.Blue, 3)
	addMana(s, bob, mana.Blue, 3)

	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: divID})
	spellID := s.Stack.List()[0].ID

	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: bob, ObjectID: cancelID, Targets: []string{spellID}})
	require.Equal(t, 2, s.Stack.Size())

	handBefore := len(s.Players[alice].Hand)
	bothPass(t, s) // resolves the counterspell; the countered spell never resolves

	assert.Equal(t, 0, s.Stack.Size())
	assert.Equal(t, handBefore, len(s.Players[alice].Hand), "countered spell draws nothing")
	assert.Len(t, s.Players[alice].Graveyard, 1, "countered spell goes to the graveyard")
}

func TestFireballXScalesWithPayment(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	fireballID := putInHand(t, s, "fireball", alice)
	addMana(s, alice, mana.Red, 5)

	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: fireballID, Targets: []string{bob}, X: 4})
	bothPass(t, s)

	assert.Equal(t, 16, s.Players[bob].Life)
	assert.True(t, s.Players[alice].Pool.IsEmpty())
}

func TestRemovalSpellDestroysCreature(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	giantID := putPermanent(t, s, "giant", bob)
	murderID := putInHand(t, s, "murder", alice)
	addMana(s, alice, mana.Black, 3)

	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: murderID, Targets: []string{giantID}})
	bothPass(t, s)

	_, onField := s.Battlefield[giantID]
	assert.False(t, onField)
	assert.Len(t, s.Players[bob].Graveyard, 1)
}

func TestSpellFizzlesWhenAllTargetsIllegal(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	bearID := putPermanent(t, s, "bear", bob)
	boltID := putInHand(t, s, "bolt", alice)
	addMana(s, alice, mana.Red, 1)

	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: boltID, Targets: []string{bearID}})

	// The target leaves the battlefield before the spell resolves.
	inst, _ := s.LeaveBattlefield(bearID)
	s.MoveToGraveyard(inst)

	bobLife := s.Players[bob].Life
	bothPass(t, s)

	assert.Equal(t, bobLife, s.Players[bob].Life)
	assert.Len(t, s.Players[alice].Graveyard, 1, "fizzled spell is countered into the graveyard")
}

func TestAuraEntersAttachedAndLocksAttacker(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	bearID := putPermanent(t, s, "bear", alice)
	pacifismID := putInHand(t, s, "pacifism", alice)
	addMana(s, alice, mana.White, 2)

	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: pacifismID, Targets: []string{bearID}})
	bothPass(t, s)

	require.Contains(t, s.Battlefield, pacifismID)
	assert.Equal(t, bearID, s.Battlefield[pacifismID].AttachedTo)

	snap := s.Derived(bearID)
	require.NotNil(t, snap)
	assert.True(t, snap.CannotAttack)
	assert.Error(t, s.attackerEligible(bearID))
}

func TestOrphanedAuraGoesToGraveyard(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	bearID := putPermanent(t, s, "bear", alice)
	pacifismID := putInHand(t, s, "pacifism", alice)
	addMana(s, alice, mana.White, 2)
	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: pacifismID, Targets: []string{bearID}})
	bothPass(t, s)
	require.Contains(t, s.Battlefield, pacifismID)

	// The enchanted creature dies; the aura follows on the next check.
	inst, _ := s.LeaveBattlefield(bearID)
	s.MoveToGraveyard(inst)
	s.checkStateBasedActions()

	_, onField := s.Battlefield[pacifismID]
	assert.False(t, onField)
}

func TestTapForManaAddsToPool(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	forestID := putPermanent(t, s, "forest", alice)
	mustApply(t, s, Action{Type: ActionTapForMana, ActorID: alice, ObjectID: forestID})

	assert.True(t, s.Battlefield[forestID].Tapped)
	assert.Equal(t, 1, s.Players[alice].Pool.Amount(mana.Green))

	res := s.Apply(Action{Type: ActionTapForMana, ActorID: alice, ObjectID: forestID})
	assert.Equal(t, StatusFailure, res.Status, "a tapped land cannot tap again")
}

func TestTargetedDiscardSuspendsAndResumes(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	rotID := putInHand(t, s, "mindrot", alice)
	addMana(s, alice, mana.Black, 3)

	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: rotID, Targets: []string{bob}})
	bothPass(t, s)

	require.NotNil(t, s.Pending)
	require.Equal(t, DecisionDiscard, s.Pending.Kind)
	require.Equal(t, bob, s.Pending.PlayerID)

	picks := []string{s.Pending.Options[0], s.Pending.Options[1]}
	handBefore := len(s.Players[bob].Hand)
	mustApply(t, s, Action{Type: ActionResolveDecision, ActorID: bob, Choice: picks})

	assert.Nil(t, s.Pending)
	assert.Equal(t, handBefore-2, len(s.Players[bob].Hand))
	assert.Len(t, s.Players[bob].Graveyard, 2)
}

func TestCounterPlacingSpellGrowsCreature(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	advanceToStep(t, s, rules.StepMain1)

	bearID := putPermanent(t, s, "bear", alice)
	growthID := putInHand(t, s, "battlegrowth", alice)
	addMana(s, alice, mana.Green, 1)

	mustApply(t, s, Action{Type: ActionCastSpell, ActorID: alice, ObjectID: growthID, Targets: []string{bearID}})
	bothPass(t, s)

	assert.Equal(t, 1, s.Battlefield[bearID].Counters.Count(counters.PlusOne))
	snap := s.Derived(bearID)
	assert.Equal(t, 3, snap.Power)
	assert.Equal(t, 3, snap.Toughness)
}

func TestHandZoneYieldsTargetCandidates(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	cardID := putInHand(t, s, "bear", alice)

	cands := s.targetCandidates(cards.TargetSpec{Zone: cards.ZoneHand})
	require.NotEmpty(t, cands)

	found := false
	for _, c := range cands {
		if c.ID == cardID {
			found = true
			assert.Equal(t, alice, c.ControllerID)
			assert.Contains(t, c.Types, cards.TypeCreature)
		}
	}
	assert.True(t, found, "hand cards must be visible to hand-zone target specs")
}
