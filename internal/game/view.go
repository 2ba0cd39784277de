package game

import (
	"sort"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/game/counters"
	"github.com/arcanarena/arena-server-go/internal/game/mana"
)

// CardView is the visible projection of a card instance in an open zone.
type CardView struct {
	InstanceID string `json:"instance_id"`
	CardID     string `json:"card_id"`
	Name       string `json:"name"`
	Cost       string `json:"cost,omitempty"`
}

// PermanentView is the visible projection of a battlefield permanent,
// carrying derived characteristics rather than printed ones.
type PermanentView struct {
	InstanceID    string                `json:"instance_id"`
	CardID        string                `json:"card_id"`
	Name          string                `json:"name"`
	ControllerID  string                `json:"controller_id"`
	Types         []cards.Type          `json:"types"`
	Subtypes      []string              `json:"subtypes,omitempty"`
	Power         int                   `json:"power"`
	Toughness     int                   `json:"toughness"`
	Keywords      []cards.Keyword       `json:"keywords,omitempty"`
	Tapped        bool                  `json:"tapped"`
	SummoningSick bool                  `json:"summoning_sick"`
	Damage        int                   `json:"damage"`
	Counters      map[counters.Type]int `json:"counters,omitempty"`
	AttachedTo    string                `json:"attached_to,omitempty"`
	Attacking     bool                  `json:"attacking"`
	Blocking      string                `json:"blocking,omitempty"`
	Token         bool                  `json:"token"`
}

// StackItemView is the visible projection of one stack item.
type StackItemView struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Controller  string   `json:"controller"`
	Description string   `json:"description"`
	Targets     []string `json:"targets,omitempty"`
}

// PlayerView is the visible projection of one player. Hand contents are
// only present for the requesting player.
type PlayerView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Life        int                `json:"life"`
	HandSize    int                `json:"hand_size"`
	LibrarySize int                `json:"library_size"`
	Hand        []CardView         `json:"hand,omitempty"`
	Graveyard   []CardView         `json:"graveyard"`
	Mana        map[mana.Color]int `json:"mana,omitempty"`
	ManaAny     int                `json:"mana_any,omitempty"`
	ManaGeneric int                `json:"mana_generic,omitempty"`
	LandsPlayed int                `json:"lands_played"`
	Conceded    bool               `json:"conceded,omitempty"`
}

// DecisionView is the visible projection of a pending decision addressed to
// the requesting player.
type DecisionView struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	MinPicks int      `json:"min_picks"`
	MaxPicks int      `json:"max_picks"`
	Ordered  bool     `json:"ordered"`
}

// VisibleState is the player-scoped read projection of a game. The opponent
// hand is hidden; only its size is shown.
type VisibleState struct {
	GameID         string              `json:"game_id"`
	Turn           int                 `json:"turn"`
	Phase          string              `json:"phase"`
	Step           string              `json:"step"`
	ActivePlayer   string              `json:"active_player"`
	PriorityPlayer string              `json:"priority_player"`
	You            PlayerView          `json:"you"`
	Opponent       PlayerView          `json:"opponent"`
	Battlefield    []PermanentView     `json:"battlefield"`
	StackItems     []StackItemView     `json:"stack"`
	Exile          []CardView          `json:"exile"`
	Attackers      []string            `json:"attackers,omitempty"`
	Blockers       map[string][]string `json:"blockers,omitempty"`
	Decision       *DecisionView       `json:"decision,omitempty"`
	Over           bool                `json:"over"`
	WinnerID       string              `json:"winner_id,omitempty"`
	Reason         string              `json:"reason,omitempty"`
}

func (s *State) cardView(inst *CardInstance) CardView {
	def := s.Definition(inst)
	view := CardView{InstanceID: inst.ID, CardID: inst.CardID, Name: def.Name}
	if def.Cost != nil {
		view.Cost = def.Cost.String()
	}
	return view
}

func (s *State) playerView(playerID string, includeHand bool) PlayerView {
	player := s.Players[playerID]
	view := PlayerView{
		ID:          player.ID,
		Name:        player.Name,
		Life:        player.Life,
		HandSize:    len(player.Hand),
		LibrarySize: len(player.Library),
		LandsPlayed: player.LandsPlayed,
		Conceded:    player.Conceded,
	}
	if includeHand {
		for _, inst := range player.Hand {
			view.Hand = append(view.Hand, s.cardView(inst))
		}
		view.Mana = make(map[mana.Color]int)
		for _, color := range mana.Colors {
			if n := player.Pool.Amount(color); n > 0 {
				view.Mana[color] = n
			}
		}
		view.ManaAny = player.Pool.Any()
		view.ManaGeneric = player.Pool.Generic()
	}
	view.Graveyard = make([]CardView, 0, len(player.Graveyard))
	for _, inst := range player.Graveyard {
		view.Graveyard = append(view.Graveyard, s.cardView(inst))
	}
	return view
}

// View builds the visible state for one player.
func (s *State) View(playerID string) *VisibleState {
	s.DeriveAll()

	view := &VisibleState{
		GameID:         s.ID,
		Turn:           s.Turn.TurnNumber(),
		Phase:          s.Turn.CurrentPhase().String(),
		Step:           s.Turn.CurrentStep().String(),
		ActivePlayer:   s.ActivePlayer(),
		PriorityPlayer: s.Turn.PriorityPlayer(),
		You:            s.playerView(playerID, true),
		Opponent:       s.playerView(s.Opponent(playerID), false),
		Over:           s.Over,
		WinnerID:       s.WinnerID,
		Reason:         s.Reason,
	}

	for _, perm := range s.Permanents() {
		id := perm.Instance.ID
		snap := s.Derived(id)
		if snap == nil {
			continue
		}
		pv := PermanentView{
			InstanceID:    id,
			CardID:        perm.Instance.CardID,
			Name:          s.Definition(perm.Instance).Name,
			ControllerID:  perm.ControllerID,
			Types:         snap.Types,
			Subtypes:      snap.Subtypes,
			Power:         snap.Power,
			Toughness:     snap.Toughness,
			Keywords:      snap.Keywords(),
			Tapped:        perm.Tapped,
			SummoningSick: perm.SummoningSick,
			Damage:        perm.Damage,
			AttachedTo:    perm.AttachedTo,
			Attacking:     s.Combat.IsAttacking(id),
			Token:         perm.Instance.Token,
		}
		if blocked, ok := s.Combat.BlockerOf(id); ok {
			pv.Blocking = blocked
		}
		if perm.Counters.Total() > 0 {
			pv.Counters = make(map[counters.Type]int)
			perm.Counters.Each(func(t counters.Type, n int) {
				pv.Counters[t] = n
			})
		}
		view.Battlefield = append(view.Battlefield, pv)
	}

	for _, item := range s.Stack.List() {
		view.StackItems = append(view.StackItems, StackItemView{
			ID:          item.ID,
			Kind:        string(item.Kind),
			Controller:  item.Controller,
			Description: item.Description,
			Targets:     item.Targets,
		})
	}

	for _, inst := range s.Exile {
		view.Exile = append(view.Exile, s.cardView(inst))
	}
	sort.Slice(view.Exile, func(i, j int) bool {
		return view.Exile[i].InstanceID < view.Exile[j].InstanceID
	})

	if len(s.Combat.Attackers) > 0 {
		view.Attackers = s.Combat.Attackers
		view.Blockers = s.Combat.Blockers
	}

	if s.Pending != nil && s.Pending.PlayerID == playerID {
		view.Decision = &DecisionView{
			ID:       s.Pending.ID,
			Kind:     string(s.Pending.Kind),
			Prompt:   s.Pending.Prompt,
			Options:  s.Pending.Options,
			MinPicks: s.Pending.MinPicks,
			MaxPicks: s.Pending.MaxPicks,
			Ordered:  s.Pending.Ordered,
		}
	}

	return view
}
