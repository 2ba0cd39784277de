package cards

import (
	"github.com/arcanarena/arena-server-go/internal/game/mana"
)

// CostKind enumerates the closed set of non-mana cost variants.
type CostKind string

const (
	CostTapSelf           CostKind = "TAP_SELF"
	CostMana              CostKind = "MANA"
	CostPayLife           CostKind = "PAY_LIFE"
	CostSacrificeSelf     CostKind = "SACRIFICE_SELF"
	CostSacrificeCreature CostKind = "SACRIFICE_CREATURE"
	CostSacrificeOther    CostKind = "SACRIFICE_OTHER"
	CostDiscardCards      CostKind = "DISCARD_CARDS"
)

// Cost is a single activation or additional casting cost.
type Cost struct {
	Kind CostKind

	// Mana is the mana component for CostMana.
	Mana *mana.Cost

	// Amount is the life paid, the number of cards discarded, or the number
	// of permanents sacrificed.
	Amount int

	// Filter restricts which permanents or cards may be sacrificed or
	// discarded to pay the cost.
	Filter *Selector
}

// AlternateCost is an alternative way to cast a spell, replacing its mana
// cost entirely. Eligibility is a predicate over game state evaluated by
// the legality surface; it is never combined with X or normal mana payment.
type AlternateCost struct {
	Name string

	// PayLife is life paid as part of the alternate cost.
	PayLife int

	// RequiresSubtype demands the caster control a permanent with this
	// subtype (e.g. "control a Forest").
	RequiresSubtype string

	// ExtraCosts are non-mana costs paid in addition (discard, sacrifice).
	ExtraCosts []Cost
}
