package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a run event.
type EventType string

const (
	// Run lifecycle
	EventRunStarted EventType = "RUN_STARTED"
	EventRunEnded   EventType = "RUN_ENDED"

	// Turn flow
	EventTurnStarted  EventType = "TURN_STARTED"
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventTurnEnded    EventType = "TURN_ENDED"

	// Activation flow
	EventActivationStarted   EventType = "ACTIVATION_STARTED"
	EventEffectExecuted      EventType = "EFFECT_EXECUTED"
	EventTargetingRequired   EventType = "TARGETING_REQUIRED"
	EventTargetingResolved   EventType = "TARGETING_RESOLVED"
	EventTargetingCancelled  EventType = "TARGETING_CANCELLED"
	EventActivationCompleted EventType = "ACTIVATION_COMPLETED"

	// Cards and zones
	EventCardPlayed      EventType = "CARD_PLAYED"
	EventCardDrawn       EventType = "CARD_DRAWN"
	EventCardDiscarded   EventType = "CARD_DISCARDED"
	EventCardDestroyed   EventType = "CARD_DESTROYED"
	EventCardMoved       EventType = "CARD_MOVED"
	EventCardCreated     EventType = "CARD_CREATED"
	EventCardTransformed EventType = "CARD_TRANSFORMED"
	EventCardRevealed    EventType = "CARD_REVEALED"
	EventDeckShuffled    EventType = "DECK_SHUFFLED"

	// Treasure
	EventTreasureCreated  EventType = "TREASURE_CREATED"
	EventTreasureBoosted  EventType = "TREASURE_BOOSTED"
	EventTreasureUpgraded EventType = "TREASURE_UPGRADED"
	EventTreasureSettled  EventType = "TREASURE_SETTLED"

	// Gold
	EventGoldGained        EventType = "GOLD_GAINED"
	EventGoldSpent         EventType = "GOLD_SPENT"
	EventGoldModifierAdded EventType = "GOLD_MODIFIER_ADDED"

	// Units and houses
	EventUnitCreated             EventType = "UNIT_CREATED"
	EventUnitKilled              EventType = "UNIT_KILLED"
	EventUnitPromoted            EventType = "UNIT_PROMOTED"
	EventUnitDemoted             EventType = "UNIT_DEMOTED"
	EventUnitHoused              EventType = "UNIT_HOUSED"
	EventPromotionChoiceRequired EventType = "PROMOTION_CHOICE_REQUIRED"
	EventHouseBuilt              EventType = "HOUSE_BUILT"

	// Town
	EventPollutionChanged EventType = "POLLUTION_CHANGED"
	EventTownEvent        EventType = "TOWN_EVENT"

	// Persistent effects
	EventPersistentAdded   EventType = "PERSISTENT_ADDED"
	EventPersistentApplied EventType = "PERSISTENT_APPLIED"
	EventPersistentExpired EventType = "PERSISTENT_EXPIRED"

	// Actions
	EventActionsGranted EventType = "ACTIONS_GRANTED"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type      EventType
	ID        string // Unique event ID
	RunID     string
	SourceID  string // Card, event or persistent effect that caused it
	TargetID  string // Card or unit acted on
	Amount    int    // Magnitude (gold, cards, counters)
	Flag      bool   // Success or similar boolean payload
	Data      string // Additional string data
	Timestamp time.Time
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Callbacks run on the publisher's goroutine.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
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

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	listener := TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	}
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], listener)
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered for all events or for one type.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}

	if typedListeners, ok := bus.typedListeners[event.Type]; ok {
		for _, listener := range typedListeners {
			listener.Callback(event)
		}
	}
}

// PublishBatch publishes multiple events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, runID, sourceID, targetID string) Event {
	return Event{
		Type:      eventType,
		RunID:     runID,
		SourceID:  sourceID,
		TargetID:  targetID,
		Timestamp: time.Now(),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, runID, sourceID, targetID string, amount int) Event {
	evt := NewEvent(eventType, runID, sourceID, targetID)
	evt.Amount = amount
	return evt
}
