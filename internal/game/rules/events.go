package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Turn structure events.
	EventStepChanged EventType = "STEP_CHANGED"
	EventTurnEnded   EventType = "TURN_ENDED"
	EventUpkeep      EventType = "UPKEEP"

	// Zone and card events.
	EventZoneChange        EventType = "ZONE_CHANGE"
	EventEntersBattlefield EventType = "ENTERS_BATTLEFIELD"
	EventDies              EventType = "DIES"
	EventDrewCard          EventType = "DREW_CARD"
	EventDiscardedCard     EventType = "DISCARDED_CARD"
	EventSacrificed        EventType = "SACRIFICED"

	// Spell and ability events.
	EventSpellCast        EventType = "SPELL_CAST"
	EventSpellCountered   EventType = "SPELL_COUNTERED"
	EventAbilityActivated EventType = "ABILITY_ACTIVATED"
	EventStackResolved    EventType = "STACK_RESOLVED"

	// Combat events.
	EventAttackerDeclared EventType = "ATTACKER_DECLARED"
	EventBlockerDeclared  EventType = "BLOCKER_DECLARED"
	EventDamagedCreature  EventType = "DAMAGED_CREATURE"
	EventDamagedPlayer    EventType = "DAMAGED_PLAYER"

	// Player events.
	EventLifeChanged EventType = "LIFE_CHANGED"
	EventGameOver    EventType = "GAME_OVER"
)

// Event represents a state change that triggers and watchers may react to.
type Event struct {
	Type       EventType
	TargetID   string
	SourceID   string
	Controller string
	PlayerID   string
	Amount     int
	Timestamp  time.Time
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// EventBus provides a synchronous publish/subscribe implementation with
// optional per-type filtering. Publishing never spawns goroutines; handlers
// run inline on the publishing call.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType]map[int]Listener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType]map[int]Listener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a single event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	if _, ok := bus.typedListeners[eventType]; !ok {
		bus.typedListeners[eventType] = make(map[int]Listener)
	}
	bus.typedListeners[eventType][handle] = listener
	return handle
}

// Unsubscribe removes the listener identified by the handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for _, listeners := range bus.typedListeners {
		delete(listeners, handle)
	}
}

// Publish delivers the event to all matching listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	all := make([]Listener, 0, len(bus.listeners))
	for _, l := range bus.listeners {
		all = append(all, l)
	}
	for _, l := range bus.typedListeners[event.Type] {
		all = append(all, l)
	}
	bus.mu.RUnlock()

	for _, l := range all {
		l(event)
	}
}
