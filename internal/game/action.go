package game

// ActionType enumerates the closed set of actions a decision-maker may
// submit.
type ActionType string

const (
	ActionPlayLand         ActionType = "PLAY_LAND"
	ActionTapForMana       ActionType = "TAP_FOR_MANA"
	ActionCastSpell        ActionType = "CAST_SPELL"
	ActionActivateAbility  ActionType = "ACTIVATE_ABILITY"
	ActionDeclareAttackers ActionType = "DECLARE_ATTACKERS"
	ActionDeclareBlockers  ActionType = "DECLARE_BLOCKERS"
	ActionPassPriority     ActionType = "PASS_PRIORITY"
	ActionResolveDecision  ActionType = "RESOLVE_DECISION"
	ActionConcede          ActionType = "CONCEDE"
	ActionSkipCombat       ActionType = "SKIP_COMBAT"
	ActionSkipMain2        ActionType = "SKIP_MAIN2"
)

// Action is a request produced by a decision-maker. Which fields are
// meaningful depends on Type; validation rejects malformed combinations
// before any state is touched.
type Action struct {
	Type    ActionType `json:"type"`
	ActorID string     `json:"actor_id"`

	// ObjectID names the card instance or permanent the action operates
	// on: the land played, the spell cast, the ability's source.
	ObjectID string `json:"object_id,omitempty"`
	// AbilityID selects an activated ability on ObjectID.
	AbilityID string `json:"ability_id,omitempty"`

	// Targets are chosen target ids in effect order.
	Targets []string `json:"targets,omitempty"`

	// Mode selects a mode of a modal spell.
	Mode int `json:"mode,omitempty"`
	// X is the chosen value for an X cost.
	X int `json:"x,omitempty"`
	// Alternate names an alternate cost to cast with.
	Alternate string `json:"alternate,omitempty"`
	// AdditionalPays lists, per additional cost in definition order, the
	// instance ids used to pay it (cards discarded, creatures sacrificed).
	AdditionalPays [][]string `json:"additional_pays,omitempty"`
	// Flashback casts the spell from the graveyard for its flashback cost.
	Flashback bool `json:"flashback,omitempty"`

	// Attackers for DECLARE_ATTACKERS, in damage order.
	Attackers []string `json:"attackers,omitempty"`
	// Blockers for DECLARE_BLOCKERS: attacker id to blockers in damage
	// assignment order.
	Blockers map[string][]string `json:"blockers,omitempty"`

	// Choice carries the picks answering a pending decision.
	Choice []string `json:"choice,omitempty"`
}

// Status is the outcome tier of a submitted action.
type Status string

const (
	// StatusSuccess: the action validated and resolved.
	StatusSuccess Status = "SUCCESS"
	// StatusFailure: validation rejected the action; no mutation occurred.
	StatusFailure Status = "FAILURE"
	// StatusError: resolution panicked; the engine recovered but makes no
	// rollback guarantee for partial mutation.
	StatusError Status = "ERROR"
)

// ResolutionResult reports what happened to a submitted action.
type ResolutionResult struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

func failure(message string) ResolutionResult {
	return ResolutionResult{Status: StatusFailure, Message: message}
}

func success(message string, payload map[string]any) ResolutionResult {
	return ResolutionResult{Status: StatusSuccess, Message: message, Payload: payload}
}
