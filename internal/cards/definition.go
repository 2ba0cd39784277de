package cards

import (
	"fmt"

	"github.com/arcanarena/arena-server-go/internal/game/mana"
)

// Type represents a card type.
type Type string

const (
	TypeLand        Type = "LAND"
	TypeCreature    Type = "CREATURE"
	TypeInstant     Type = "INSTANT"
	TypeSorcery     Type = "SORCERY"
	TypeEnchantment Type = "ENCHANTMENT"
	TypeArtifact    Type = "ARTIFACT"
)

// Keyword represents an evergreen keyword ability.
type Keyword string

const (
	KeywordFlying         Keyword = "FLYING"
	KeywordReach          Keyword = "REACH"
	KeywordHaste          Keyword = "HASTE"
	KeywordTrample        Keyword = "TRAMPLE"
	KeywordDeathtouch     Keyword = "DEATHTOUCH"
	KeywordLifelink       Keyword = "LIFELINK"
	KeywordFirstStrike    Keyword = "FIRST_STRIKE"
	KeywordDoubleStrike   Keyword = "DOUBLE_STRIKE"
	KeywordMenace         Keyword = "MENACE"
	KeywordHexproof       Keyword = "HEXPROOF"
	KeywordIndestructible Keyword = "INDESTRUCTIBLE"
	KeywordDefender       Keyword = "DEFENDER"
	KeywordVigilance      Keyword = "VIGILANCE"
)

// Definition is the immutable rules data for one card. Definitions are
// shared read-only between the legality surface and the resolution engine;
// nothing may mutate them after registration.
type Definition struct {
	ID        string
	Name      string
	Types     []Type
	Subtypes  []string
	Cost      *mana.Cost // nil for lands
	Power     int
	Toughness int
	Keywords  []Keyword

	// Spell effects for instants and sorceries, applied on resolution.
	// Modal spells carry Modes instead; exactly one of the two is set.
	Effects []Effect
	Modes   []Mode

	Activated []ActivatedAbility
	Triggered []TriggeredAbility
	Static    []StaticAbility

	// Additional casting costs (discard, sacrifice) that must all be paid.
	AdditionalCosts []Cost
	// Alternate casting costs replacing the mana cost entirely.
	Alternates []AlternateCost
	// Flashback allows casting from the graveyard for this cost; the spell
	// is exiled instead of going to the graveyard when it resolves.
	Flashback *mana.Cost

	// AttachTo restricts what an aura or equipment may legally enchant or
	// equip. Nil for cards that do not attach.
	AttachTo *Selector

	Timing Timing
}

// Mode is one mode of a modal spell.
type Mode struct {
	Name    string
	Effects []Effect
}

// Timing restricts when a spell can be cast or an ability activated.
type Timing string

const (
	// TimingInstant allows casting whenever the player has priority.
	TimingInstant Timing = "INSTANT"
	// TimingSorcery requires the player's own main phase and an empty stack.
	TimingSorcery Timing = "SORCERY"
	// TimingWhileAttacking requires the source to be an attacking creature.
	TimingWhileAttacking Timing = "WHILE_ATTACKING"
)

// HasType reports whether the definition carries the given card type.
func (d *Definition) HasType(t Type) bool {
	for _, dt := range d.Types {
		if dt == t {
			return true
		}
	}
	return false
}

// HasSubtype reports whether the definition carries the given subtype.
func (d *Definition) HasSubtype(subtype string) bool {
	for _, s := range d.Subtypes {
		if s == subtype {
			return true
		}
	}
	return false
}

// HasKeyword reports whether the definition natively carries a keyword.
// Derived state may add or remove keywords on top of this.
func (d *Definition) HasKeyword(k Keyword) bool {
	for _, kw := range d.Keywords {
		if kw == k {
			return true
		}
	}
	return false
}

// IsPermanentType reports whether resolving this card puts a permanent onto
// the battlefield.
func (d *Definition) IsPermanentType() bool {
	return d.HasType(TypeLand) || d.HasType(TypeCreature) ||
		d.HasType(TypeEnchantment) || d.HasType(TypeArtifact)
}

// IsAura reports whether the card is an aura enchantment.
func (d *Definition) IsAura() bool {
	return d.HasType(TypeEnchantment) && d.HasSubtype("Aura")
}

// IsEquipment reports whether the card is an equipment artifact.
func (d *Definition) IsEquipment() bool {
	return d.HasType(TypeArtifact) && d.HasSubtype("Equipment")
}

// DB is a read-only card database shared by reference between all engine
// components. Registration happens once at startup; lookups afterwards are
// not synchronized.
type DB struct {
	defs map[string]*Definition
}

// NewDB creates an empty card database.
func NewDB() *DB {
	return &DB{defs: make(map[string]*Definition)}
}

// Register adds a definition to the database. It returns an error if the id
// is empty or already taken.
func (db *DB) Register(def *Definition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("card definition requires an id")
	}
	if _, exists := db.defs[def.ID]; exists {
		return fmt.Errorf("card id %q already registered", def.ID)
	}
	if len(def.Effects) > 0 && len(def.Modes) > 0 {
		return fmt.Errorf("card %q cannot have both effects and modes", def.ID)
	}
	db.defs[def.ID] = def
	return nil
}

// MustRegister registers a definition and panics on error. Intended for
// fixed card pools built from literals.
func (db *DB) MustRegister(def *Definition) {
	if err := db.Register(def); err != nil {
		panic(err)
	}
}

// Get looks up a definition by card id.
func (db *DB) Get(id string) (*Definition, bool) {
	def, ok := db.defs[id]
	return def, ok
}

// Size returns the number of registered definitions.
func (db *DB) Size() int {
	return len(db.defs)
}
