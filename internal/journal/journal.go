package journal

import (
	"context"
	"sync"
	"time"

	"github.com/arcanarena/arena-server-go/internal/game"
)

// Entry records one submitted action together with the submitter's view of
// the game before the action and the resolution outcome.
type Entry struct {
	GameID   string
	Sequence int
	ActorID  string
	Action   game.Action
	Before   *game.VisibleState
	Result   game.ResolutionResult
	At       time.Time
}

// Store persists the action journal of running games. Implementations never
// mutate game state; they only observe what the engine hands them.
type Store interface {
	Record(ctx context.Context, entry Entry) error
	Entries(ctx context.Context, gameID string) ([]Entry, error)
	Close()
}

// MemStore keeps the journal in memory, for tests and single-node dev runs.
type MemStore struct {
	mu      sync.Mutex
	byGame  map[string][]Entry
	nextSeq map[string]int
}

// NewMemStore creates an empty in-memory journal.
func NewMemStore() *MemStore {
	return &MemStore{
		byGame:  make(map[string][]Entry),
		nextSeq: make(map[string]int),
	}
}

// Record appends the entry to its game's journal, assigning the next
// sequence number.
func (m *MemStore) Record(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.Sequence = m.nextSeq[entry.GameID]
	m.nextSeq[entry.GameID]++
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	m.byGame[entry.GameID] = append(m.byGame[entry.GameID], entry)
	return nil
}

// Entries returns the recorded entries for a game in sequence order.
func (m *MemStore) Entries(_ context.Context, gameID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Entry, len(m.byGame[gameID]))
	copy(entries, m.byGame[gameID])
	return entries, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() {}
