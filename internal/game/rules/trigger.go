package rules

import (
	"sync"

	"github.com/google/uuid"
)

// AbilityTrigger reacts to one event type and produces a stack item when
// its condition is satisfied.
type AbilityTrigger struct {
	ID         string
	SourceID   string
	Controller string
	EventType  EventType
	Condition  func(Event) bool
	Build      func(Event) StackItem
	Once       bool
}

// TriggerManager stores ability triggers and evaluates events against them.
// Triggers are registered when a permanent with triggered abilities enters
// the battlefield and unregistered when it leaves.
type TriggerManager struct {
	mu       sync.Mutex
	triggers map[string]AbilityTrigger
	order    []string
}

// NewTriggerManager creates an empty trigger manager.
func NewTriggerManager() *TriggerManager {
	return &TriggerManager{triggers: make(map[string]AbilityTrigger)}
}

// Register adds a trigger and returns its id.
func (tm *TriggerManager) Register(trigger AbilityTrigger) string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if trigger.ID == "" {
		trigger.ID = uuid.NewString()
	}
	tm.triggers[trigger.ID] = trigger
	tm.order = append(tm.order, trigger.ID)
	return trigger.ID
}

// Unregister removes a trigger by id.
func (tm *TriggerManager) Unregister(id string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.triggers, id)
}

// UnregisterSource removes every trigger belonging to the given source
// permanent. Called when the permanent leaves the battlefield.
func (tm *TriggerManager) UnregisterSource(sourceID string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for id, trigger := range tm.triggers {
		if trigger.SourceID == sourceID {
			delete(tm.triggers, id)
		}
	}
}

// Handle evaluates the event against all registered triggers in
// registration order and returns the stack items they produce.
func (tm *TriggerManager) Handle(event Event) []StackItem {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var (
		items    []StackItem
		toRemove []string
	)
	for _, id := range tm.order {
		trigger, ok := tm.triggers[id]
		if !ok {
			continue
		}
		if trigger.EventType != event.Type {
			continue
		}
		if trigger.Condition != nil && !trigger.Condition(event) {
			continue
		}
		if trigger.Build == nil {
			continue
		}
		item := trigger.Build(event)
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Kind == "" {
			item.Kind = StackItemKindTriggered
		}
		items = append(items, item)
		if trigger.Once {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		delete(tm.triggers, id)
	}
	return items
}
