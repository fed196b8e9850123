// Package simulator implements the four synthesis modes of spec §4.4
// (loopback, scripted, burst, error-inject) as one engine shared by
// the UART, CAN and Ethernet adapters' CreateSimulator, parameterized
// by a small per-transport FrameSource. The SPI and I²C adapters do
// not use it: their CreateSimulator returns their own in-memory
// handle, which ignores the simulator mode.
package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/transport"
)

const loopbackDelay = 10 * time.Millisecond

// FrameSource synthesizes one burst-mode frame from a monotonic local
// frame counter, per spec §4.4's "deterministic data as a function of
// a local frame counter" burst rule.
type FrameSource interface {
	Next(tick uint64) []byte
}

type engineSub struct {
	id      uint64
	handler transport.ChunkHandler
}

// Engine is a transport.Handle backed entirely by synthesized traffic.
// It satisfies the Handle interface structurally; adapters return it
// directly from CreateSimulator.
type Engine struct {
	mu        sync.Mutex
	cfg       model.SimulatorConfig
	source    FrameSource
	stats     *model.StatsCounter
	subs      []engineSub
	nextSubID uint64
	closed    bool
	done      chan struct{}
	rng       *rand.Rand
	tick      uint64
}

// NewEngine starts a simulator for cfg. source is consulted only in
// burst mode; pass nil for modes that don't need one.
func NewEngine(cfg model.SimulatorConfig, source FrameSource) *Engine {
	e := &Engine{
		cfg:    cfg,
		source: source,
		stats:  model.NewStatsCounter(time.Now()),
		done:   make(chan struct{}),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	switch cfg.Mode {
	case model.SimulatorScripted:
		go e.runScripted()
	case model.SimulatorBurst:
		go e.runBurst()
	}
	return e
}

// Write implements transport.Handle. In loopback (and bare error-inject,
// which this engine treats as loopback-with-drops per the design note
// in DESIGN.md) mode, the write is echoed back to subscribers after
// loopbackDelay. Scripted and burst modes generate their own traffic
// independent of writes; Write only updates tx counters for them.
func (e *Engine) Write(ctx context.Context, data []byte) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return transport.ErrClosed
	}
	e.mu.Unlock()

	e.stats.AddTx(uint64(len(data)))

	switch e.cfg.Mode {
	case model.SimulatorLoopback, model.SimulatorErrorInject:
		echo := append([]byte(nil), data...)
		time.AfterFunc(loopbackDelay, func() { e.emit(echo) })
	}
	return nil
}

// Read implements transport.Handle.
func (e *Engine) Read(handler transport.ChunkHandler) func() {
	e.mu.Lock()
	e.nextSubID++
	id := e.nextSubID
	e.subs = append(e.subs, engineSub{id: id, handler: handler})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		out := e.subs[:0:0]
		for _, s := range e.subs {
			if s.id != id {
				out = append(out, s)
			}
		}
		e.subs = out
	}
}

// SetOptions implements transport.Handle. Simulators accept every
// option change as a no-op, per spec §4.3's handle contract.
func (e *Engine) SetOptions(model.AdapterOpenOptions) error {
	return nil
}

// Close implements transport.Handle. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	close(e.done)
	e.subs = nil
	return nil
}

// Stats implements transport.Handle.
func (e *Engine) Stats() model.AdapterStats {
	return e.stats.Snapshot(time.Now())
}

// emit applies the error-inject probability (active whenever ErrorRate
// is set, regardless of the base mode, per spec §4.4: "combined with
// any mode") and, absent a drop, delivers data to every subscriber.
func (e *Engine) emit(data []byte) {
	if e.cfg.ErrorRate > 0 && e.rng.Float64() < e.cfg.ErrorRate {
		e.stats.AddError()
		return
	}
	e.stats.AddRx(uint64(len(data)))
	e.deliver(data)
}

func (e *Engine) deliver(data []byte) {
	e.mu.Lock()
	subs := append([]engineSub(nil), e.subs...)
	e.mu.Unlock()

	meta := model.RxMeta{
		TimestampNS: time.Now().UnixNano(),
		Direction:   model.DirectionRx,
		Length:      len(data),
	}
	for _, s := range subs {
		e.invoke(s, data, meta)
	}
}

func (e *Engine) invoke(s engineSub, data []byte, meta model.RxMeta) {
	defer func() { recover() }()
	s.handler(data, meta)
}
