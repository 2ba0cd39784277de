package cards

import (
	"github.com/arcanarena/arena-server-go/internal/game/counters"
	"github.com/arcanarena/arena-server-go/internal/game/mana"
)

// EffectKind enumerates the closed set of effect variants. Every kind must
// be handled by both the legality surface (choice enumeration) and the
// resolution dispatcher; adding a kind without extending both interpreters
// is a bug.
type EffectKind string

const (
	EffectDealDamage          EffectKind = "DEAL_DAMAGE"
	EffectGainLife            EffectKind = "GAIN_LIFE"
	EffectLoseLife            EffectKind = "LOSE_LIFE"
	EffectDrawCards           EffectKind = "DRAW_CARDS"
	EffectDiscard             EffectKind = "DISCARD"
	EffectAddCounters         EffectKind = "ADD_COUNTERS"
	EffectCounterSpell        EffectKind = "COUNTER_SPELL"
	EffectDestroy             EffectKind = "DESTROY"
	EffectExile               EffectKind = "EXILE"
	EffectReturnToHand        EffectKind = "RETURN_TO_HAND"
	EffectReturnToBattlefield EffectKind = "RETURN_TO_BATTLEFIELD"
	EffectAttach              EffectKind = "ATTACH"
	EffectModifyPT            EffectKind = "MODIFY_PT"
	EffectAddMana             EffectKind = "ADD_MANA"
	EffectCreateToken         EffectKind = "CREATE_TOKEN"
	EffectVote                EffectKind = "VOTE"
	EffectScry                EffectKind = "SCRY"
	EffectSearchLibrary       EffectKind = "SEARCH_LIBRARY"
	EffectRevealSplit         EffectKind = "REVEAL_SPLIT"
	EffectSacrifice           EffectKind = "SACRIFICE"
	EffectTap                 EffectKind = "TAP"
	EffectUntap               EffectKind = "UNTAP"
)

// Effect is one step of a spell or ability, pure data interpreted by the
// engine. Which parameter fields are meaningful depends on Kind.
type Effect struct {
	Kind EffectKind

	// Amount carries the primary magnitude: damage dealt, cards drawn,
	// life gained or lost, counters added, scry depth, cards discarded.
	Amount int
	// UsesX substitutes the spell's chosen X value for Amount.
	UsesX bool

	// Target describes what the effect targets. Nil for untargeted effects;
	// those apply to the spell's controller or to objects named by other
	// parameters.
	Target *TargetSpec

	// EachPlayer applies the effect to every player in turn order
	// (e.g. "each player sacrifices a creature").
	EachPlayer bool

	// CounterType names the counter placed by ADD_COUNTERS.
	CounterType counters.Type

	// Mana describes the production of ADD_MANA.
	Mana *ManaProduction

	// Token describes the token created by CREATE_TOKEN.
	Token *TokenSpec

	// Power/Toughness deltas and granted keywords for MODIFY_PT. The
	// modification lasts until end of turn.
	Power     int
	Toughness int
	Grants    []Keyword

	// Filter restricts what may be discarded, sacrificed, or searched for.
	Filter *Selector

	// VoteOptions lists the named choices of a VOTE effect, and
	// VoteOutcomes maps each option to the effects applied if it wins the
	// vote. Ties are broken in VoteOptions order.
	VoteOptions  []string
	VoteOutcomes map[string][]Effect

	// ToBattlefield puts searched or revealed cards directly onto the
	// battlefield instead of into the hand.
	ToBattlefield bool
}

// ManaProduction describes mana added to a pool by an effect.
type ManaProduction struct {
	Colors  map[mana.Color]int
	Any     int // wildcard mana, spendable as any color
	Generic int // mana only usable for generic costs
}

// TokenSpec describes a creature token to create.
type TokenSpec struct {
	Name      string
	Types     []Type
	Subtypes  []string
	Power     int
	Toughness int
	Keywords  []Keyword
	Count     int
}
