package cards

// ActivatedAbility is an ability a player may activate by paying its costs.
// Mana abilities resolve immediately without using the stack.
type ActivatedAbility struct {
	ID      string
	Text    string
	Costs   []Cost
	Effects []Effect
	// ManaAbility marks abilities that only add mana; they bypass the
	// stack and cannot be responded to.
	ManaAbility bool
	Timing      Timing
}

// TriggerKind enumerates the closed set of trigger conditions.
type TriggerKind string

const (
	TriggerEntersBattlefield TriggerKind = "ENTERS_BATTLEFIELD"
	TriggerDies              TriggerKind = "DIES"
	TriggerAttacks           TriggerKind = "ATTACKS"
	TriggerDealtDamage       TriggerKind = "DEALT_DAMAGE"
	TriggerUpkeep            TriggerKind = "UPKEEP"
	TriggerCastSpell         TriggerKind = "CAST_SPELL"
)

// TriggeredAbility queues its effects onto the stack when its trigger
// condition occurs while the source is on the battlefield.
type TriggeredAbility struct {
	ID      string
	Text    string
	Trigger TriggerKind
	Effects []Effect
	// ControllerOnly restricts CAST_SPELL and UPKEEP triggers to events
	// caused by the source's controller.
	ControllerOnly bool
}

// StaticKind enumerates the closed set of static-ability variants feeding
// the derive pass and cost computation.
type StaticKind string

const (
	StaticPTBoost             StaticKind = "PT_BOOST"
	StaticGrantKeyword        StaticKind = "GRANT_KEYWORD"
	StaticCostReduction       StaticKind = "COST_REDUCTION"
	StaticCannotAttack        StaticKind = "CANNOT_ATTACK"
	StaticMustAttack          StaticKind = "MUST_ATTACK"
	StaticMustBeBlockedByAll  StaticKind = "MUST_BE_BLOCKED_BY_ALL"
	StaticPreventCombatDamage StaticKind = "PREVENT_COMBAT_DAMAGE"
	StaticAssignAsUnblocked   StaticKind = "ASSIGN_AS_UNBLOCKED"
)

// StaticScope describes which permanents a static ability applies to.
type StaticScope string

const (
	ScopeSelf              StaticScope = "SELF"
	ScopeYourCreatures     StaticScope = "YOUR_CREATURES"
	ScopeOpponentCreatures StaticScope = "OPPONENT_CREATURES"
	ScopeAllCreatures      StaticScope = "ALL_CREATURES"
)

// StaticAbility is always active while its source is on the battlefield
// (or, for cost reductions, while its controller casts spells). It
// contributes to derived state rather than the stack.
type StaticAbility struct {
	ID   string
	Text string
	Kind StaticKind

	Scope StaticScope
	// Filter further restricts affected permanents beyond Scope.
	Filter *Selector

	// Power/Toughness deltas for PT_BOOST.
	Power     int
	Toughness int

	// Keyword granted by GRANT_KEYWORD.
	Keyword Keyword

	// Reduction and MatchTags for COST_REDUCTION: spells whose type or
	// subtype set intersects MatchTags cost Reduction less generic mana.
	Reduction int
	MatchTags []string

	// RequiresSubtype gates the ability on its controller controlling a
	// permanent with the given subtype. Empty means unconditional.
	RequiresSubtype string
}
