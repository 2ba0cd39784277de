package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanarena/arena-server-go/internal/game"
)

func TestMemStoreRecordsInSequence(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := store.Record(ctx, Entry{
			GameID:  "g1",
			ActorID: "alice",
			Action:  game.Action{Type: game.ActionPassPriority, ActorID: "alice"},
			Result:  game.ResolutionResult{Status: game.StatusSuccess},
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.Record(ctx, Entry{
		GameID:  "g2",
		ActorID: "bob",
		Action:  game.Action{Type: game.ActionConcede, ActorID: "bob"},
		Result:  game.ResolutionResult{Status: game.StatusSuccess},
	}))

	entries, err := store.Entries(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i, e.Sequence)
		assert.False(t, e.At.IsZero())
	}

	other, err := store.Entries(ctx, "g2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, 0, other[0].Sequence, "sequences are per game")
}

func TestMemStoreEntriesAreCopies(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Entry{GameID: "g1", ActorID: "alice"}))

	entries, err := store.Entries(ctx, "g1")
	require.NoError(t, err)
	entries[0].ActorID = "mutated"

	again, err := store.Entries(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again[0].ActorID)
}

func TestMemStoreUnknownGameIsEmpty(t *testing.T) {
	store := NewMemStore()

	entries, err := store.Entries(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
