package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicSetRegisters(t *testing.T) {
	db := BasicSet()
	require.Greater(t, db.Size(), 20)

	for _, id := range []string{"plains", "island", "swamp", "mountain", "forest"} {
		def, ok := db.Get(id)
		require.True(t, ok, "missing basic land %s", id)
		assert.True(t, def.HasType(TypeLand))
		require.Len(t, def.Activated, 1)
		assert.True(t, def.Activated[0].ManaAbility)
	}

	angel, ok := db.Get("serra-angel")
	require.True(t, ok)
	assert.True(t, angel.HasKeyword(KeywordFlying))
	assert.True(t, angel.HasKeyword(KeywordVigilance))

	bolt, ok := db.Get("lightning-bolt")
	require.True(t, ok)
	require.Len(t, bolt.Effects, 1)
	assert.True(t, bolt.Effects[0].Target.Selector.AnyTarget)
}

func TestBasicSetSpellsCarryTargetsOrNone(t *testing.T) {
	db := BasicSet()

	murder, ok := db.Get("murder")
	require.True(t, ok)
	require.NotNil(t, murder.Effects[0].Target)
	assert.Equal(t, ZoneBattlefield, murder.Effects[0].Target.Zone)

	div, ok := db.Get("divination")
	require.True(t, ok)
	assert.Nil(t, div.Effects[0].Target, "untargeted draw applies to the caster")
}
