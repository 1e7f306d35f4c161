package game

import (
	"sync"
	"time"

	"github.com/lox/minicasino/internal/cards"
	"github.com/lox/minicasino/internal/settlement"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for table events
const (
	EventTypeBetPlaced    EventType = "bet_placed"
	EventTypeRoundStart   EventType = "round_start"
	EventTypeCardDealt    EventType = "card_dealt"
	EventTypeHoleRevealed EventType = "hole_revealed"
	EventTypePhaseChange  EventType = "phase_change"
	EventTypeRoundSettled EventType = "round_settled"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is published on every table state transition. State carries the
// snapshot taken right after the transition.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	State() Snapshot
}

type baseEvent struct {
	snapshot  Snapshot
	timestamp time.Time
}

func (e baseEvent) Timestamp() time.Time { return e.timestamp }
func (e baseEvent) State() Snapshot      { return e.snapshot }

// BetPlacedEvent is published when a wager is accepted and debited
type BetPlacedEvent struct {
	baseEvent
	Amount int64
	Side   string
}

func (e BetPlacedEvent) EventType() EventType { return EventTypeBetPlaced }

// NewBetPlacedEvent creates a new bet placed event
func NewBetPlacedEvent(at time.Time, s Snapshot, amount int64, side string) BetPlacedEvent {
	return BetPlacedEvent{baseEvent: baseEvent{snapshot: s, timestamp: at}, Amount: amount, Side: side}
}

// RoundStartEvent is published when a fresh deck is shuffled for a new round
type RoundStartEvent struct {
	baseEvent
	RoundID string
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }

// NewRoundStartEvent creates a new round start event
func NewRoundStartEvent(at time.Time, s Snapshot) RoundStartEvent {
	return RoundStartEvent{baseEvent: baseEvent{snapshot: s, timestamp: at}, RoundID: s.RoundID}
}

// CardDealtEvent is published for every card leaving the deck. Face-down
// cards are published with the zero Card.
type CardDealtEvent struct {
	baseEvent
	Seat     string
	Index    int // Position of the card in the seat's hand
	Card     cards.Card
	FaceDown bool
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }

// NewCardDealtEvent creates a new card dealt event
func NewCardDealtEvent(at time.Time, s Snapshot, seat string, index int, c cards.Card, faceDown bool) CardDealtEvent {
	if faceDown {
		c = cards.Card{}
	}
	return CardDealtEvent{
		baseEvent: baseEvent{snapshot: s, timestamp: at},
		Seat:      seat,
		Index:     index,
		Card:      c,
		FaceDown:  faceDown,
	}
}

// HoleRevealedEvent is published when the dealer's face-down card is turned
type HoleRevealedEvent struct {
	baseEvent
	Card cards.Card
}

func (e HoleRevealedEvent) EventType() EventType { return EventTypeHoleRevealed }

// NewHoleRevealedEvent creates a new hole revealed event
func NewHoleRevealedEvent(at time.Time, s Snapshot, c cards.Card) HoleRevealedEvent {
	return HoleRevealedEvent{baseEvent: baseEvent{snapshot: s, timestamp: at}, Card: c}
}

// PhaseChangeEvent is published when the round moves to another phase
type PhaseChangeEvent struct {
	baseEvent
	From Phase
	To   Phase
}

func (e PhaseChangeEvent) EventType() EventType { return EventTypePhaseChange }

// NewPhaseChangeEvent creates a new phase change event
func NewPhaseChangeEvent(at time.Time, s Snapshot, from, to Phase) PhaseChangeEvent {
	return PhaseChangeEvent{baseEvent: baseEvent{snapshot: s, timestamp: at}, From: from, To: to}
}

// RoundSettledEvent is published once per round, after the wallet is credited
type RoundSettledEvent struct {
	baseEvent
	Outcome string
	Result  settlement.Result
}

func (e RoundSettledEvent) EventType() EventType { return EventTypeRoundSettled }

// NewRoundSettledEvent creates a new round settled event
func NewRoundSettledEvent(at time.Time, s Snapshot, outcome string, res settlement.Result) RoundSettledEvent {
	return RoundSettledEvent{baseEvent: baseEvent{snapshot: s, timestamp: at}, Outcome: outcome, Result: res}
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to EventSubscriber
type SubscriberFunc func(Event)

// OnEvent calls f(event)
func (f SubscriberFunc) OnEvent(event Event) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is an in-memory bus delivering events synchronously, in
// subscription order
type SimpleEventBus struct {
	mu          sync.Mutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber. SubscriberFunc values cannot be compared
// and are never matched; wrap them in a pointer type if they must be removed.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if _, isFunc := sub.(SubscriberFunc); isFunc {
			continue
		}
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.Lock()
	subs := make([]EventSubscriber, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.Unlock()

	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}

// Recorder is a subscriber that keeps every event it sees
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// OnEvent records the event
func (r *Recorder) OnEvent(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the types of the recorded events in order
func (r *Recorder) Types() []EventType {
	events := r.Events()
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.EventType()
	}
	return out
}

// Reset forgets every recorded event
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
