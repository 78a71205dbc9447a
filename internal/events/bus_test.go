package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishReachesTypedSubscriber(t *testing.T) {
	bus := NewEventBus()
	received := make(chan Event, 1)

	bus.Subscribe(EventTradeExecuted, func(e Event) {
		received <- e
	})

	bus.PublishTradeExecuted("wallet", "txid", "buy", "SOL", 1.0, 0.9)

	select {
	case e := <-received:
		if e.Type != EventTradeExecuted {
			t.Errorf("unexpected event type %s", e.Type)
		}
		if e.Data["txid"] != "txid" || e.Data["wallet"] != "wallet" {
			t.Errorf("event data missing fields: %+v", e.Data)
		}
		if e.ID == "" {
			t.Error("expected an assigned event ID")
		}
		if e.Timestamp.IsZero() {
			t.Error("expected an assigned timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestPublishSkipsOtherTypes(t *testing.T) {
	bus := NewEventBus()
	received := make(chan Event, 1)

	bus.Subscribe(EventTradeFailed, func(e Event) {
		received <- e
	})

	bus.PublishSignal("wallet", "buy", "SOL", 1.0, 0.8)

	select {
	case e := <-received:
		t.Errorf("subscriber received unrelated event %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus()

	var mu sync.Mutex
	var seen []EventType
	done := make(chan struct{}, 3)

	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		seen = append(seen, e.Type)
		mu.Unlock()
		done <- struct{}{}
	})

	bus.PublishSignal("w", "buy", "SOL", 1, 0.9)
	bus.PublishTradeRejected("w", "Low confidence prediction")
	bus.PublishError("trader", "boom")

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("all-events subscriber missed an event")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Errorf("expected 3 events, saw %d", len(seen))
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bus := NewEventBus()
	release := make(chan struct{})

	bus.Subscribe(EventError, func(e Event) {
		<-release
	})

	start := time.Now()
	bus.PublishError("source", "message")
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Publish blocked for %v on a slow subscriber", elapsed)
	}
	close(release)
}
