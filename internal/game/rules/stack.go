package rules

import (
	"errors"
	"sync"

	"github.com/arcanarena/arena-server-go/internal/cards"
)

// StackItemKind describes the type of object on the stack.
type StackItemKind string

const (
	// StackItemKindSpell represents a spell cast by a player.
	StackItemKindSpell StackItemKind = "SPELL"
	// StackItemKindActivated represents an activated ability.
	StackItemKindActivated StackItemKind = "ACTIVATED"
	// StackItemKindTriggered represents a triggered ability.
	StackItemKindTriggered StackItemKind = "TRIGGERED"
)

// StackItem represents a single pending spell or ability on the stack.
// Everything needed to resolve it later is carried as plain data.
type StackItem struct {
	ID          string
	Kind        StackItemKind
	Controller  string
	Description string

	// SourceID is the battlefield permanent the ability came from, if any.
	SourceID string
	// InstanceID is the underlying card instance for spells. Empty for
	// abilities.
	InstanceID string
	// CardID is the card definition id for spells.
	CardID string

	// Targets are the chosen target ids, in the order the effect list
	// consumes them.
	Targets []string

	// Effects is the effect list to apply on resolution.
	Effects []cards.Effect

	// Mode is the chosen mode index for modal spells, -1 otherwise.
	Mode int
	// X is the chosen X value, 0 when the cost has no X.
	X int
	// Flashback marks spells cast from the graveyard; they are exiled
	// instead of going to the graveyard on resolution.
	Flashback bool
}

// StackManager manages the game stack. The stack resolves strictly LIFO;
// only the top item is ever resolved.
type StackManager struct {
	mu    sync.Mutex
	items []StackItem
}

// NewStackManager creates an empty stack.
func NewStackManager() *StackManager {
	return &StackManager{items: make([]StackItem, 0, 16)}
}

// Push adds an item to the top of the stack.
func (sm *StackManager) Push(item StackItem) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.items = append(sm.items, item)
}

// Pop removes and returns the top item.
func (sm *StackManager) Pop() (StackItem, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if len(sm.items) == 0 {
		return StackItem{}, errors.New("stack empty")
	}
	idx := len(sm.items) - 1
	item := sm.items[idx]
	sm.items = sm.items[:idx]
	return item, nil
}

// Peek returns the top item without removing it.
func (sm *StackManager) Peek() (StackItem, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if len(sm.items) == 0 {
		return StackItem{}, false
	}
	return sm.items[len(sm.items)-1], true
}

// Remove deletes an item from anywhere in the stack by id. Used by
// counterspell effects.
func (sm *StackManager) Remove(id string) (StackItem, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for idx := len(sm.items) - 1; idx >= 0; idx-- {
		if sm.items[idx].ID == id {
			item := sm.items[idx]
			sm.items = append(sm.items[:idx], sm.items[idx+1:]...)
			return item, true
		}
	}
	return StackItem{}, false
}

// List returns a copy of all stack items, bottom first.
func (sm *StackManager) List() []StackItem {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	cpy := make([]StackItem, len(sm.items))
	copy(cpy, sm.items)
	return cpy
}

// Size returns the number of items on the stack.
func (sm *StackManager) Size() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.items)
}

// IsEmpty reports whether the stack is empty.
func (sm *StackManager) IsEmpty() bool {
	return sm.Size() == 0
}
