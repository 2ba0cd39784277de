package cards

// TargetZone identifies where an effect looks for its targets.
type TargetZone string

const (
	ZoneBattlefield TargetZone = "BATTLEFIELD"
	ZoneStack       TargetZone = "STACK"
	ZoneGraveyard   TargetZone = "GRAVEYARD"
	ZoneHand        TargetZone = "HAND"
)

// WhoConstraint restricts targets by their relationship to the acting
// player.
type WhoConstraint string

const (
	WhoAny       WhoConstraint = "ANY"
	WhoYou       WhoConstraint = "YOU"
	WhoOpponent  WhoConstraint = "OPPONENT"
	WhoDefending WhoConstraint = "DEFENDING"
)

// TargetSpec describes the target requirement of one effect: where to look,
// what qualifies and how many to pick.
type TargetSpec struct {
	Zone     TargetZone
	Selector Selector
	Who      WhoConstraint

	// Count is the number of targets required; zero means one.
	Count int
	// UpTo allows selecting fewer than Count targets, including none.
	UpTo bool
	// DistinctControllers requires all chosen permanents to have pairwise
	// different controllers ("two target creatures with different
	// controllers").
	DistinctControllers bool
}

// Targets returns the effective target count.
func (ts *TargetSpec) Targets() int {
	if ts.Count <= 0 {
		return 1
	}
	return ts.Count
}

// Selector is a predicate over game objects, used for targeting, cost
// payment filters, library searches and static-ability applicability.
type Selector struct {
	// Types/Subtypes/Keywords must all be present on a matching card.
	Types    []Type
	Subtypes []string
	Keywords []Keyword

	// Players makes the selector match players instead of cards.
	Players bool
	// AnyTarget matches creatures and players alike ("any target").
	AnyTarget bool
}

// AnyCreature matches every creature.
var AnyCreature = Selector{Types: []Type{TypeCreature}}

// AnyPlayer matches every player.
var AnyPlayer = Selector{Players: true}
