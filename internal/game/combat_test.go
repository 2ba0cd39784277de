package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanarena/arena-server-go/internal/game/rules"
)

// declareAttack moves the game to the attacker declaration step and submits
// the given attackers for the active player.
func declareAttack(t *testing.T, s *State, attackers ...string) {
	t.Helper()
	advanceToStep(t, s, rules.StepDeclareAttackers)
	mustApply(t, s, Action{Type: ActionDeclareAttackers, ActorID: s.ActivePlayer(), Attackers: attackers})
}

// declareBlock passes into the blocker step and submits the block map,
// then passes both players into the damage step.
func declareBlock(t *testing.T, s *State, blocks map[string][]string) {
	t.Helper()
	bothPass(t, s)
	require.Equal(t, rules.StepDeclareBlockers, s.Turn.CurrentStep())
	if blocks == nil {
		blocks = map[string][]string{}
	}
	mustApply(t, s, Action{Type: ActionDeclareBlockers, ActorID: s.Opponent(s.ActivePlayer()), Blockers: blocks})
	bothPass(t, s)
	require.Equal(t, rules.StepDamage, s.Turn.CurrentStep())
}

func inGraveyard(s *State, playerID, instanceID string) bool {
	for _, inst := range s.Players[playerID].Graveyard {
		if inst.ID == instanceID {
			return true
		}
	}
	return false
}

func TestSummoningSickCreatureCannotAttack(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	sickID := putSickPermanent(t, s, "bear", alice)
	advanceToStep(t, s, rules.StepDeclareAttackers)

	res := s.Apply(Action{Type: ActionDeclareAttackers, ActorID: alice, Attackers: []string{sickID}})
	assert.Equal(t, StatusFailure, res.Status)
}

func TestHasteAttacksTheTurnItArrives(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	hastyID := putSickPermanent(t, s, "hasty", alice)

	declareAttack(t, s, hastyID)
	declareBlock(t, s, nil)

	assert.Equal(t, 19, s.Players[bob].Life)
}

func TestUnblockedAttackerDamagesDefendingPlayer(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	bearID := putPermanent(t, s, "bear", alice)

	declareAttack(t, s, bearID)
	assert.True(t, s.Battlefield[bearID].Tapped, "attacking taps the creature")

	declareBlock(t, s, nil)
	assert.Equal(t, 18, s.Players[bob].Life)
}

func TestBlockedAttackerDealsNoPlayerDamage(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	bearID := putPermanent(t, s, "bear", alice)
	giantID := putPermanent(t, s, "giant", bob)

	declareAttack(t, s, bearID)
	declareBlock(t, s, map[string][]string{bearID: {giantID}})

	assert.Equal(t, 20, s.Players[bob].Life)
	assert.True(t, inGraveyard(s, alice, bearID), "the 2/2 dies to the 4/4 blocker")
	require.Contains(t, s.Battlefield, giantID)
	assert.Equal(t, 2, s.Battlefield[giantID].Damage, "the blocker keeps its marked damage")
}

func TestTrampleSpillsExcessToPlayer(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	tramplerID := putPermanent(t, s, "trampler", alice)
	bearID := putPermanent(t, s, "bear", bob)

	declareAttack(t, s, tramplerID)
	declareBlock(t, s, map[string][]string{tramplerID: {bearID}})

	assert.True(t, inGraveyard(s, bob, bearID))
	assert.Equal(t, 16, s.Players[bob].Life, "6 power minus 2 lethal spills 4")
}

func TestFirstStrikerKillsBeforeTakingDamage(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	strikerID := putPermanent(t, s, "firststriker", alice)
	bearID := putPermanent(t, s, "bear", bob)

	declareAttack(t, s, strikerID)
	declareBlock(t, s, map[string][]string{strikerID: {bearID}})

	assert.True(t, inGraveyard(s, bob, bearID))
	require.Contains(t, s.Battlefield, strikerID)
	assert.Equal(t, 0, s.Battlefield[strikerID].Damage, "the dead blocker never strikes back")
}

func TestDeathtouchTradesUp(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	toucherID := putPermanent(t, s, "deathtoucher", alice)
	giantID := putPermanent(t, s, "giant", bob)

	declareAttack(t, s, toucherID)
	declareBlock(t, s, map[string][]string{toucherID: {giantID}})

	assert.True(t, inGraveyard(s, alice, toucherID))
	assert.True(t, inGraveyard(s, bob, giantID), "one deathtouch damage is lethal")
}

func TestMenaceRequiresAtLeastTwoBlockers(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	menacerID := putPermanent(t, s, "menacer", alice)
	bearID := putPermanent(t, s, "bear", bob)
	giantID := putPermanent(t, s, "giant", bob)

	declareAttack(t, s, menacerID)
	bothPass(t, s)

	res := s.Apply(Action{Type: ActionDeclareBlockers, ActorID: bob, Blockers: map[string][]string{menacerID: {bearID}}})
	assert.Equal(t, StatusFailure, res.Status, "a lone blocker cannot block menace")

	mustApply(t, s, Action{Type: ActionDeclareBlockers, ActorID: bob, Blockers: map[string][]string{menacerID: {bearID, giantID}}})
}

func TestFlyerBlockedOnlyByReachOrFlying(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	flyerID := putPermanent(t, s, "flyer", alice)
	bearID := putPermanent(t, s, "bear", bob)
	reacherID := putPermanent(t, s, "reacher", bob)

	declareAttack(t, s, flyerID)
	bothPass(t, s)

	res := s.Apply(Action{Type: ActionDeclareBlockers, ActorID: bob, Blockers: map[string][]string{flyerID: {bearID}}})
	assert.Equal(t, StatusFailure, res.Status, "a ground creature cannot block flying")

	mustApply(t, s, Action{Type: ActionDeclareBlockers, ActorID: bob, Blockers: map[string][]string{flyerID: {reacherID}}})
}

func TestVigilanceAttacksWithoutTapping(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	vigilantID := putPermanent(t, s, "vigilant", alice)

	declareAttack(t, s, vigilantID)
	assert.False(t, s.Battlefield[vigilantID].Tapped)
}

func TestLifelinkCombatDamageHealsController(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	linkerID := putPermanent(t, s, "lifelinker", alice)

	declareAttack(t, s, linkerID)
	declareBlock(t, s, nil)

	assert.Equal(t, 18, s.Players[bob].Life)
	assert.Equal(t, 22, s.Players[alice].Life)
}

func TestDefenderNeverAttacks(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	wallID := putPermanent(t, s, "wall", alice)
	advanceToStep(t, s, rules.StepDeclareAttackers)

	res := s.Apply(Action{Type: ActionDeclareAttackers, ActorID: alice, Attackers: []string{wallID}})
	assert.Equal(t, StatusFailure, res.Status)
}

func TestTappedCreatureCannotBlock(t *testing.T) {
	s := newTestState(t, landDeck(20), landDeck(20))
	bearID := putPermanent(t, s, "bear", alice)
	giantID := putPermanent(t, s, "giant", bob)
	s.Battlefield[giantID].Tapped = true

	declareAttack(t, s, bearID)
	bothPass(t, s)

	res := s.Apply(Action{Type: ActionDeclareBlockers, ActorID: bob, Blockers: map[string][]string{bearID: {giantID}}})
	assert.Equal(t, StatusFailure, res.Status)
}
