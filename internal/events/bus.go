package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventSignalGenerated EventType = "SIGNAL_GENERATED"
	EventTradeExecuted   EventType = "TRADE_EXECUTED"
	EventTradeRejected   EventType = "TRADE_REJECTED"
	EventTradeFailed     EventType = "TRADE_FAILED"
	EventModelTrained    EventType = "MODEL_TRAINED"
	EventBreakerTripped  EventType = "BREAKER_TRIPPED"
	EventBreakerReset    EventType = "BREAKER_RESET"
	EventBotStarted      EventType = "BOT_STARTED"
	EventBotStopped      EventType = "BOT_STOPPED"
	EventError           EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber // Subscribers to all events
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Notify specific subscribers
	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event) // Run in goroutine to avoid blocking
		}
	}

	// Notify all-event subscribers
	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishSignal publishes a signal generated event
func (eb *EventBus) PublishSignal(wallet, action, token string, amount, confidence float64) {
	eb.Publish(Event{
		Type: EventSignalGenerated,
		Data: map[string]interface{}{
			"wallet":     wallet,
			"action":     action,
			"token":      token,
			"amount":     amount,
			"confidence": confidence,
		},
	})
}

// PublishTradeExecuted publishes a successful trade event
func (eb *EventBus) PublishTradeExecuted(wallet, txid, action, token string, amount, confidence float64) {
	eb.Publish(Event{
		Type: EventTradeExecuted,
		Data: map[string]interface{}{
			"wallet":     wallet,
			"txid":       txid,
			"action":     action,
			"token":      token,
			"amount":     amount,
			"confidence": confidence,
		},
	})
}

// PublishTradeRejected publishes an expected non-executed outcome
// (low confidence, no routes) as distinct from a hard failure.
func (eb *EventBus) PublishTradeRejected(wallet, reason string) {
	eb.Publish(Event{
		Type: EventTradeRejected,
		Data: map[string]interface{}{
			"wallet": wallet,
			"reason": reason,
		},
	})
}

// PublishTradeFailed publishes a failed trade event
func (eb *EventBus) PublishTradeFailed(wallet, reason string) {
	eb.Publish(Event{
		Type: EventTradeFailed,
		Data: map[string]interface{}{
			"wallet": wallet,
			"reason": reason,
		},
	})
}

// PublishError publishes an error event
func (eb *EventBus) PublishError(source, message string) {
	eb.Publish(Event{
		Type: EventError,
		Data: map[string]interface{}{
			"source":  source,
			"message": message,
		},
	})
}
