package transport

import (
	"sync"
	"time"

	"github.com/commwatch/commwatch/internal/model"
)

type dispatchSub struct {
	id      uint64
	handler ChunkHandler
}

// Dispatcher is the shared subscriber-list implementation behind every
// real (non-simulated) Handle's Read/Close: registration-ordered
// delivery, per-subscriber panic isolation, per spec §4.3's handle
// contract.
type Dispatcher struct {
	mu     sync.Mutex
	nextID uint64
	subs   []dispatchSub
}

// Subscribe registers handler and returns an unsubscribe function.
func (d *Dispatcher) Subscribe(handler ChunkHandler) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, dispatchSub{id: id, handler: handler})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		out := d.subs[:0:0]
		for _, s := range d.subs {
			if s.id != id {
				out = append(out, s)
			}
		}
		d.subs = out
	}
}

// Publish delivers chunk/meta to every subscriber in registration
// order. A panicking subscriber is recovered and does not block the
// rest.
func (d *Dispatcher) Publish(chunk []byte, meta model.RxMeta) {
	d.mu.Lock()
	subs := append([]dispatchSub(nil), d.subs...)
	d.mu.Unlock()

	for _, s := range subs {
		d.invoke(s, chunk, meta)
	}
}

func (d *Dispatcher) invoke(s dispatchSub, chunk []byte, meta model.RxMeta) {
	defer func() { recover() }()
	s.handler(chunk, meta)
}

// Clear drops every subscriber, used by Close.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = nil
}

// NowRxMeta builds an RxMeta for a just-received chunk.
func NowRxMeta(length int, transportSpecific map[string]any) model.RxMeta {
	return model.RxMeta{
		TimestampNS:       time.Now().UnixNano(),
		Direction:         model.DirectionRx,
		Length:            length,
		TransportSpecific: transportSpecific,
	}
}
