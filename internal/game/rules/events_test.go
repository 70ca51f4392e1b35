package rules

import (
	"testing"
	"time"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	executedCount := 0
	goldCount := 0

	handle1 := bus.SubscribeTyped(EventEffectExecuted, func(e Event) {
		executedCount++
	})

	handle2 := bus.SubscribeTyped(EventGoldGained, func(e Event) {
		goldCount++
	})

	bus.Publish(NewEvent(EventEffectExecuted, "run1", "card1", ""))
	if executedCount != 1 {
		t.Fatalf("expected executed count 1, got %d", executedCount)
	}
	if goldCount != 0 {
		t.Fatalf("expected gold count 0, got %d", goldCount)
	}

	bus.Publish(NewEventWithAmount(EventGoldGained, "run1", "card1", "", 5))
	if executedCount != 1 {
		t.Fatalf("expected executed count still 1, got %d", executedCount)
	}
	if goldCount != 1 {
		t.Fatalf("expected gold count 1, got %d", goldCount)
	}

	// Unsubscribe the executed listener; only gold keeps counting.
	bus.Unsubscribe(handle1)

	bus.Publish(NewEvent(EventEffectExecuted, "run1", "card2", ""))
	if executedCount != 1 {
		t.Fatalf("expected executed count still 1 after unsubscribe, got %d", executedCount)
	}

	bus.Publish(NewEventWithAmount(EventGoldGained, "run1", "card2", "", 3))
	if goldCount != 2 {
		t.Fatalf("expected gold count 2, got %d", goldCount)
	}

	bus.Unsubscribe(handle2)
	bus.Publish(NewEventWithAmount(EventGoldGained, "run1", "card3", "", 2))
	if goldCount != 2 {
		t.Fatalf("expected gold count still 2 after unsubscribe, got %d", goldCount)
	}
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()

	allEventCount := 0
	handle := bus.Subscribe(func(e Event) {
		allEventCount++
	})

	bus.Publish(NewEvent(EventCardPlayed, "run1", "card1", ""))
	bus.Publish(NewEvent(EventGoldGained, "run1", "card1", ""))
	bus.Publish(NewEvent(EventTurnEnded, "run1", "", ""))

	if allEventCount != 3 {
		t.Fatalf("expected all event count 3, got %d", allEventCount)
	}

	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventCardPlayed, "run1", "card2", ""))
	if allEventCount != 3 {
		t.Fatalf("expected all event count still 3 after unsubscribe, got %d", allEventCount)
	}
}

func TestEventBusPublishBatch(t *testing.T) {
	bus := NewEventBus()

	var order []EventType
	bus.Subscribe(func(e Event) {
		order = append(order, e.Type)
	})

	bus.PublishBatch([]Event{
		NewEvent(EventPersistentApplied, "run1", "p1", ""),
		NewEvent(EventPersistentExpired, "run1", "p1", ""),
	})

	if len(order) != 2 {
		t.Fatalf("expected 2 events, got %d", len(order))
	}
	if order[0] != EventPersistentApplied || order[1] != EventPersistentExpired {
		t.Fatalf("batch published out of order: %v", order)
	}
}

func TestEventBusNilListener(t *testing.T) {
	bus := NewEventBus()
	if handle := bus.Subscribe(nil); handle != -1 {
		t.Fatalf("expected -1 handle for nil listener, got %d", handle)
	}
	if handle := bus.SubscribeTyped(EventCardDrawn, nil); handle != -1 {
		t.Fatalf("expected -1 handle for nil typed listener, got %d", handle)
	}
}

func TestNewEventPopulatesTimestamp(t *testing.T) {
	before := time.Now()
	evt := NewEventWithAmount(EventGoldGained, "run1", "card1", "", 7)
	if evt.Timestamp.Before(before) {
		t.Fatalf("event timestamp not populated")
	}
	if evt.Amount != 7 {
		t.Fatalf("expected amount 7, got %d", evt.Amount)
	}
}
