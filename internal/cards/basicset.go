package cards

import "github.com/arcanarena/arena-server-go/internal/game/mana"

// BasicSet returns the built-in card pool the server plays with. The set is
// deliberately small; decks reference these definitions by id.
func BasicSet() *DB {
	db := NewDB()

	for _, land := range []struct {
		id, name, subtype string
		color             mana.Color
	}{
		{"plains", "Plains", "Plains", mana.White},
		{"island", "Island", "Island", mana.Blue},
		{"swamp", "Swamp", "Swamp", mana.Black},
		{"mountain", "Mountain", "Mountain", mana.Red},
		{"forest", "Forest", "Forest", mana.Green},
	} {
		db.MustRegister(&Definition{
			ID: land.id, Name: land.name, Types: []Type{TypeLand},
			Subtypes: []string{land.subtype},
			Activated: []ActivatedAbility{{
				ID: land.id + "-mana", Text: "{T}: Add one mana.", ManaAbility: true,
				Costs: []Cost{{Kind: CostTapSelf}},
				Effects: []Effect{{
					Kind: EffectAddMana,
					Mana: &ManaProduction{Colors: map[mana.Color]int{land.color: 1}},
				}},
			}},
		})
	}

	db.MustRegister(&Definition{
		ID: "grizzly-bears", Name: "Grizzly Bears", Types: []Type{TypeCreature},
		Subtypes: []string{"Bear"}, Cost: mana.MustParse("{1}{G}"),
		Power: 2, Toughness: 2,
	})
	db.MustRegister(&Definition{
		ID: "hill-giant", Name: "Hill Giant", Types: []Type{TypeCreature},
		Subtypes: []string{"Giant"}, Cost: mana.MustParse("{3}{R}"),
		Power: 3, Toughness: 3,
	})
	db.MustRegister(&Definition{
		ID: "serra-angel", Name: "Serra Angel", Types: []Type{TypeCreature},
		Subtypes: []string{"Angel"}, Cost: mana.MustParse("{3}{W}{W}"),
		Power: 4, Toughness: 4,
		Keywords: []Keyword{KeywordFlying, KeywordVigilance},
	})
	db.MustRegister(&Definition{
		ID: "shivan-dragon", Name: "Shivan Dragon", Types: []Type{TypeCreature},
		Subtypes: []string{"Dragon"}, Cost: mana.MustParse("{4}{R}{R}"),
		Power: 5, Toughness: 5,
		Keywords: []Keyword{KeywordFlying},
	})
	db.MustRegister(&Definition{
		ID: "giant-spider", Name: "Giant Spider", Types: []Type{TypeCreature},
		Subtypes: []string{"Spider"}, Cost: mana.MustParse("{3}{G}"),
		Power: 2, Toughness: 4,
		Keywords: []Keyword{KeywordReach},
	})
	db.MustRegister(&Definition{
		ID: "typhoid-rats", Name: "Typhoid Rats", Types: []Type{TypeCreature},
		Subtypes: []string{"Rat"}, Cost: mana.MustParse("{B}"),
		Power: 1, Toughness: 1,
		Keywords: []Keyword{KeywordDeathtouch},
	})
	db.MustRegister(&Definition{
		ID: "raging-goblin", Name: "Raging Goblin", Types: []Type{TypeCreature},
		Subtypes: []string{"Goblin"}, Cost: mana.MustParse("{R}"),
		Power: 1, Toughness: 1,
		Keywords: []Keyword{KeywordHaste},
	})
	db.MustRegister(&Definition{
		ID: "wall-of-stone", Name: "Wall of Stone", Types: []Type{TypeCreature},
		Subtypes: []string{"Wall"}, Cost: mana.MustParse("{1}{R}{R}"),
		Power: 0, Toughness: 8,
		Keywords: []Keyword{KeywordDefender},
	})

	db.MustRegister(&Definition{
		ID: "lightning-bolt", Name: "Lightning Bolt", Types: []Type{TypeInstant},
		Cost: mana.MustParse("{R}"),
		Effects: []Effect{{
			Kind: EffectDealDamage, Amount: 3,
			Target: &TargetSpec{Zone: ZoneBattlefield, Selector: Selector{AnyTarget: true}},
		}},
	})
	db.MustRegister(&Definition{
		ID: "giant-growth", Name: "Giant Growth", Types: []Type{TypeInstant},
		Cost: mana.MustParse("{G}"),
		Effects: []Effect{{
			Kind: EffectModifyPT, Power: 3, Toughness: 3,
			Target: &TargetSpec{Zone: ZoneBattlefield, Selector: AnyCreature},
		}},
	})
	db.MustRegister(&Definition{
		ID: "cancel", Name: "Cancel", Types: []Type{TypeInstant},
		Cost: mana.MustParse("{1}{U}{U}"),
		Effects: []Effect{{
			Kind:   EffectCounterSpell,
			Target: &TargetSpec{Zone: ZoneStack},
		}},
	})
	db.MustRegister(&Definition{
		ID: "murder", Name: "Murder", Types: []Type{TypeSorcery},
		Cost: mana.MustParse("{1}{B}{B}"),
		Effects: []Effect{{
			Kind:   EffectDestroy,
			Target: &TargetSpec{Zone: ZoneBattlefield, Selector: AnyCreature},
		}},
	})
	db.MustRegister(&Definition{
		ID: "divination", Name: "Divination", Types: []Type{TypeSorcery},
		Cost:    mana.MustParse("{2}{U}"),
		Effects: []Effect{{Kind: EffectDrawCards, Amount: 2}},
	})
	db.MustRegister(&Definition{
		ID: "mind-rot", Name: "Mind Rot", Types: []Type{TypeSorcery},
		Cost: mana.MustParse("{2}{B}"),
		Effects: []Effect{{
			Kind: EffectDiscard, Amount: 2,
			Target: &TargetSpec{Selector: AnyPlayer},
		}},
	})
	db.MustRegister(&Definition{
		ID: "fireball", Name: "Fireball", Types: []Type{TypeSorcery},
		Cost: mana.MustParse("{X}{R}"),
		Effects: []Effect{{
			Kind: EffectDealDamage, UsesX: true,
			Target: &TargetSpec{Zone: ZoneBattlefield, Selector: Selector{AnyTarget: true}},
		}},
	})
	db.MustRegister(&Definition{
		ID: "pacifism", Name: "Pacifism", Types: []Type{TypeEnchantment},
		Subtypes: []string{"Aura"}, Cost: mana.MustParse("{1}{W}"),
		AttachTo: &Selector{Types: []Type{TypeCreature}},
		Static: []StaticAbility{{
			ID: "pacifism-lock", Kind: StaticCannotAttack, Scope: ScopeSelf,
		}},
	})
	db.MustRegister(&Definition{
		ID: "glorious-anthem", Name: "Glorious Anthem", Types: []Type{TypeEnchantment},
		Cost: mana.MustParse("{1}{W}{W}"),
		Static: []StaticAbility{{
			ID: "anthem-boost", Kind: StaticPTBoost, Scope: ScopeYourCreatures,
			Power: 1, Toughness: 1,
		}},
	})
	db.MustRegister(&Definition{
		ID: "raise-the-alarm", Name: "Raise the Alarm", Types: []Type{TypeInstant},
		Cost: mana.MustParse("{1}{W}"),
		Effects: []Effect{{
			Kind: EffectCreateToken,
			Token: &TokenSpec{
				Name: "Soldier", Types: []Type{TypeCreature},
				Subtypes: []string{"Soldier"}, Power: 1, Toughness: 1, Count: 2,
			},
		}},
	})

	return db
}
