package game

// SchemaChoice is one concrete way to take an allowed action. The embedded
// Action is ready to submit as-is; the descriptive fields let a caller pick
// without replaying the legality algorithms.
type SchemaChoice struct {
	Name     string `json:"name,omitempty"`
	CardID   string `json:"card_id,omitempty"`
	Cost     string `json:"cost,omitempty"`
	Action   Action `json:"action"`
	MinPicks int    `json:"min_picks,omitempty"`
	MaxPicks int    `json:"max_picks,omitempty"`
}

// Schema is the structured legality description for one player. It covers
// exactly the action space of LegalActions: every choice's Action validates,
// and no valid action type is missing from AllowedActions.
type Schema struct {
	PlayerID       string                        `json:"player_id"`
	AllowedActions []ActionType                  `json:"allowed_actions"`
	Choices        map[ActionType][]SchemaChoice `json:"choices"`
}

// BuildSchema derives the structured legality schema from the enumerated
// legal actions, so the two surfaces cannot drift apart.
func (s *State) BuildSchema(playerID string) *Schema {
	schema := &Schema{
		PlayerID: playerID,
		Choices:  make(map[ActionType][]SchemaChoice),
	}

	for _, a := range s.LegalActions(playerID) {
		choice := SchemaChoice{Action: a}

		if a.ObjectID != "" {
			if inst, _ := s.FindInstance(a.ObjectID); inst != nil {
				def := s.Definition(inst)
				choice.Name = def.Name
				choice.CardID = inst.CardID
				if def.Cost != nil {
					choice.Cost = def.Cost.String()
				}
			}
		}
		if a.Type == ActionResolveDecision && s.Pending != nil {
			choice.MinPicks = s.Pending.MinPicks
			choice.MaxPicks = s.Pending.MaxPicks
		}

		if _, seen := schema.Choices[a.Type]; !seen {
			schema.AllowedActions = append(schema.AllowedActions, a.Type)
		}
		schema.Choices[a.Type] = append(schema.Choices[a.Type], choice)
	}

	return schema
}
