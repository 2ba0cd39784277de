package targeting

import (
	"github.com/arcanarena/arena-server-go/internal/cards"
)

// Candidate is the targeting view of one game object or player. The game
// package builds candidates from derived state so that keyword checks (such
// as hexproof) see continuous effects.
type Candidate struct {
	ID           string
	ControllerID string
	Player       bool
	Types        []cards.Type
	Subtypes     []string
	Keywords     map[cards.Keyword]bool
}

// HasType reports whether the candidate carries the card type.
func (c Candidate) HasType(t cards.Type) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// HasSubtype reports whether the candidate carries the subtype.
func (c Candidate) HasSubtype(subtype string) bool {
	for _, s := range c.Subtypes {
		if s == subtype {
			return true
		}
	}
	return false
}

// MatchesSelector reports whether the candidate satisfies the selector.
func MatchesSelector(c Candidate, sel cards.Selector) bool {
	if sel.AnyTarget {
		return c.Player || c.HasType(cards.TypeCreature)
	}
	if sel.Players {
		return c.Player
	}
	if c.Player {
		return false
	}
	for _, t := range sel.Types {
		if !c.HasType(t) {
			return false
		}
	}
	for _, s := range sel.Subtypes {
		if !c.HasSubtype(s) {
			return false
		}
	}
	for _, k := range sel.Keywords {
		if !c.Keywords[k] {
			return false
		}
	}
	return true
}

// Filter returns the candidates that are legal targets for the spec when
// chosen by actor. defendingPlayer is the player being attacked during the
// current combat, or empty outside of combat. Hexproof excludes objects
// from targeting by anyone but their controller.
func Filter(candidates []Candidate, spec cards.TargetSpec, actor, defendingPlayer string) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !MatchesSelector(c, spec.Selector) {
			continue
		}
		switch spec.Who {
		case cards.WhoYou:
			if c.ControllerID != actor {
				continue
			}
		case cards.WhoOpponent:
			if c.ControllerID == actor {
				continue
			}
		case cards.WhoDefending:
			if defendingPlayer == "" || c.ControllerID != defendingPlayer {
				continue
			}
		}
		if !c.Player && c.Keywords[cards.KeywordHexproof] && c.ControllerID != actor {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Combinations enumerates every legal target combination for the spec over
// the (already filtered) candidates. Multi-target constraints such as
// pairwise-distinct controllers are validated per combination, not per
// candidate.
func Combinations(candidates []Candidate, spec cards.TargetSpec) [][]string {
	want := spec.Targets()
	var out [][]string
	if spec.UpTo {
		out = append(out, []string{})
	}
	for size := 1; size <= want && size <= len(candidates); size++ {
		if size < want && !spec.UpTo {
			continue
		}
		choose(candidates, size, 0, nil, spec, &out)
	}
	return out
}

func choose(candidates []Candidate, size, start int, picked []Candidate, spec cards.TargetSpec, out *[][]string) {
	if len(picked) == size {
		if spec.DistinctControllers && !distinctControllers(picked) {
			return
		}
		ids := make([]string, len(picked))
		for i, c := range picked {
			ids[i] = c.ID
		}
		*out = append(*out, ids)
		return
	}
	for i := start; i < len(candidates); i++ {
		choose(candidates, size, i+1, append(picked, candidates[i]), spec, out)
	}
}

func distinctControllers(picked []Candidate) bool {
	seen := make(map[string]bool, len(picked))
	for _, c := range picked {
		if seen[c.ControllerID] {
			return false
		}
		seen[c.ControllerID] = true
	}
	return true
}
