// Package eventbus implements the typed publish/subscribe bus of
// spec §4.6: per-type and wildcard subscribers, registration-ordered
// delivery, and per-subscriber panic isolation.
//
// A Bus is always instance-owned, never process-wide global state, per
// the design note in spec §9 — tests and each session.Pipeline
// construct their own.
package eventbus

import (
	"sync"

	"github.com/rs/zerolog"
)

// EventType is one of the seven named event variants, or the wildcard.
type EventType string

const (
	EventDeviceConnected    EventType = "device:connected"
	EventDeviceDisconnected EventType = "device:disconnected"
	EventDeviceError        EventType = "device:error"
	EventFrameReceived      EventType = "frame:received"
	EventFrameSent          EventType = "frame:sent"
	EventFrameError         EventType = "frame:error"
	EventStatsUpdate        EventType = "stats:update"

	Wildcard EventType = "*"
)

// Handler receives one published event's payload.
type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a typed pub/sub hub. Zero value is not usable; use New.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	byType    map[EventType][]subscription
	wildcard  []subscription
	logger    zerolog.Logger
}

// New constructs an empty bus bound to logger for subscriber-error
// reporting.
func New(logger zerolog.Logger) *Bus {
	return &Bus{
		byType: make(map[EventType][]subscription),
		logger: logger,
	}
}

// Subscribe registers handler against one event type, or Wildcard for
// every event. It returns an unsubscribe function.
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	sub := subscription{id: id, handler: handler}
	if eventType == Wildcard {
		b.wildcard = append(b.wildcard, sub)
	} else {
		b.byType[eventType] = append(b.byType[eventType], sub)
	}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if eventType == Wildcard {
			b.wildcard = removeSub(b.wildcard, id)
		} else {
			b.byType[eventType] = removeSub(b.byType[eventType], id)
		}
	}
}

func removeSub(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Publish delivers payload to every type-specific subscriber in
// registration order, then every wildcard subscriber in registration
// order. A handler that panics is recovered and logged; delivery
// continues to the remaining subscribers.
func (b *Bus) Publish(eventType EventType, payload any) {
	b.mu.Lock()
	typed := append([]subscription(nil), b.byType[eventType]...)
	wild := append([]subscription(nil), b.wildcard...)
	b.mu.Unlock()

	for _, s := range typed {
		b.invoke(eventType, s, payload)
	}
	for _, s := range wild {
		b.invoke(eventType, s, payload)
	}
}

func (b *Bus) invoke(eventType EventType, s subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("event_type", string(eventType)).
				Interface("panic", r).
				Msg("eventbus subscriber panicked")
		}
	}()
	s.handler(payload)
}

// RemoveAllListeners clears both the per-type and wildcard subscriber
// sets atomically, per spec §5.
func (b *Bus) RemoveAllListeners() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byType = make(map[EventType][]subscription)
	b.wildcard = nil
}
