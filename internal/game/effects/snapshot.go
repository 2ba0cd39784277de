package effects

import (
	"github.com/arcanarena/arena-server-go/internal/cards"
)

// Snapshot holds the derived characteristics of one permanent: effective
// power/toughness, keyword set, subtypes and behavioral flags. Snapshots are
// rebuilt from scratch by every derive pass; nothing outside the derive pass
// may mutate them.
type Snapshot struct {
	InstanceID   string
	CardID       string
	ControllerID string

	Types    []cards.Type
	Subtypes []string

	Power     int
	Toughness int

	keywords map[cards.Keyword]bool

	// Behavioral flags produced by static abilities and temporary effects.
	CannotAttack        bool
	MustAttack          bool
	MustBeBlockedByAll  bool
	PreventCombatDamage bool
	AssignAsUnblocked   bool
}

// NewSnapshot seeds a snapshot with a card's base characteristics.
func NewSnapshot(instanceID string, def *cards.Definition, controllerID string) *Snapshot {
	s := &Snapshot{
		InstanceID:   instanceID,
		CardID:       def.ID,
		ControllerID: controllerID,
		Types:        append([]cards.Type(nil), def.Types...),
		Subtypes:     append([]string(nil), def.Subtypes...),
		Power:        def.Power,
		Toughness:    def.Toughness,
		keywords:     make(map[cards.Keyword]bool, len(def.Keywords)),
	}
	for _, k := range def.Keywords {
		s.keywords[k] = true
	}
	return s
}

// HasKeyword reports whether the derived keyword set includes k.
func (s *Snapshot) HasKeyword(k cards.Keyword) bool {
	return s.keywords[k]
}

// Keywords returns the derived keyword set as a slice.
func (s *Snapshot) Keywords() []cards.Keyword {
	out := make([]cards.Keyword, 0, len(s.keywords))
	for k := range s.keywords {
		out = append(out, k)
	}
	return out
}

// HasType reports whether the derived type set includes t.
func (s *Snapshot) HasType(t cards.Type) bool {
	for _, st := range s.Types {
		if st == t {
			return true
		}
	}
	return false
}

// HasSubtype reports whether the derived subtype set includes the subtype.
func (s *Snapshot) HasSubtype(subtype string) bool {
	for _, st := range s.Subtypes {
		if st == subtype {
			return true
		}
	}
	return false
}

// IsCreature reports whether the permanent is currently a creature.
func (s *Snapshot) IsCreature() bool {
	return s.HasType(cards.TypeCreature)
}

// Apply folds one modifier into the snapshot. Modifiers are applied in a
// fixed source-then-kind order by the derive pass; this is a deliberate
// simplification of full dependency/timestamp layering.
func (s *Snapshot) Apply(m Modifier) {
	s.Power += m.Power
	s.Toughness += m.Toughness
	for _, k := range m.Grant {
		s.keywords[k] = true
	}
	for _, k := range m.Remove {
		delete(s.keywords, k)
	}
	for _, sub := range m.AddSubtypes {
		if !s.HasSubtype(sub) {
			s.Subtypes = append(s.Subtypes, sub)
		}
	}
	if m.CannotAttack {
		s.CannotAttack = true
	}
	if m.MustAttack {
		s.MustAttack = true
	}
	if m.MustBeBlockedByAll {
		s.MustBeBlockedByAll = true
	}
	if m.PreventCombatDamage {
		s.PreventCombatDamage = true
	}
	if m.AssignAsUnblocked {
		s.AssignAsUnblocked = true
	}
}

// Modifier is one contribution to derived state: a power/toughness delta,
// keyword additions or removals, extra subtypes and behavioral flags. It is
// an explicit record rather than a closure so that suspended games remain
// serializable.
type Modifier struct {
	Power     int
	Toughness int

	Grant  []cards.Keyword
	Remove []cards.Keyword

	AddSubtypes []string

	CannotAttack        bool
	MustAttack          bool
	MustBeBlockedByAll  bool
	PreventCombatDamage bool
	AssignAsUnblocked   bool
}

// IsZero reports whether the modifier has no observable effect.
func (m Modifier) IsZero() bool {
	return m.Power == 0 && m.Toughness == 0 &&
		len(m.Grant) == 0 && len(m.Remove) == 0 && len(m.AddSubtypes) == 0 &&
		!m.CannotAttack && !m.MustAttack && !m.MustBeBlockedByAll &&
		!m.PreventCombatDamage && !m.AssignAsUnblocked
}
