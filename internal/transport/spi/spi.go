// Package spi implements the SPI simulator of spec §4.3.4. SPI is
// simulation-only in this system's scope: no third-party SPI hardware
// library appears anywhere in the retrieval pack, and spec.md §1
// never exposes real SPI hardware access.
package spi

import (
	"context"
	"sync"
	"time"

	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/transport"
)

const (
	cmdRead    byte          = 0x03
	cmdWrite   byte          = 0x02
	memSize    int           = 256
	simLatency time.Duration = 5 * time.Millisecond
)

// Adapter implements transport.Adapter for the SPI simulator.
type Adapter struct{}

// New constructs an SPI adapter.
func New() *Adapter { return &Adapter{} }

func device() model.DeviceInfo {
	return model.DeviceInfo{
		ID:   "spi-sim",
		Name: "SPI Simulator",
		Type: model.TransportSPI,
		Path: "sim://spi",
	}
}

// ListDevices always returns the single simulator device.
func (a *Adapter) ListDevices(ctx context.Context) ([]model.DeviceInfo, error) {
	return []model.DeviceInfo{device()}, nil
}

// SupportsSimulation always returns true.
func (a *Adapter) SupportsSimulation() bool { return true }

// CreateSimulator returns a fresh 256-byte memory-region handle.
func (a *Adapter) CreateSimulator(cfg model.SimulatorConfig) (transport.Handle, error) {
	return newHandle(), nil
}

// Open also returns the memory-region handle: SPI never touches real
// hardware in this system's scope.
func (a *Adapter) Open(ctx context.Context, device model.DeviceInfo, opts model.AdapterOpenOptions) (transport.Handle, error) {
	return newHandle(), nil
}

type handle struct {
	mem        [memSize]byte
	dispatcher transport.Dispatcher
	stats      *model.StatsCounter

	mu     sync.Mutex
	closed bool
}

func newHandle() *handle {
	return &handle{stats: model.NewStatsCounter(time.Now())}
}

// Write implements the SPI memory-region protocol of spec §4.3.4:
// cmd 0x03 reads, cmd 0x02 writes, anything else echoes.
func (h *handle) Write(ctx context.Context, data []byte) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return transport.ErrClosed
	}
	h.mu.Unlock()

	resp := h.respond(data)
	h.stats.AddTx(uint64(len(data)))
	time.AfterFunc(simLatency, func() { h.deliver(resp) })
	return nil
}

func (h *handle) respond(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	switch data[0] {
	case cmdRead:
		resp := make([]byte, len(data))
		addr := 0
		if len(data) > 1 {
			addr = int(data[1])
		}
		for i := 2; i < len(data); i++ {
			idx := addr + (i - 2)
			if idx < memSize {
				resp[i] = h.mem[idx]
			}
		}
		return resp
	case cmdWrite:
		addr := 0
		if len(data) > 1 {
			addr = int(data[1])
		}
		for i := 2; i < len(data); i++ {
			idx := addr + (i - 2)
			if idx < memSize {
				h.mem[idx] = data[i]
			}
		}
		return []byte{0x00}
	default:
		return append([]byte(nil), data...)
	}
}

func (h *handle) deliver(resp []byte) {
	if resp == nil {
		return
	}
	h.stats.AddRx(uint64(len(resp)))
	h.dispatcher.Publish(resp, transport.NowRxMeta(len(resp), nil))
}

func (h *handle) Read(handler transport.ChunkHandler) func() {
	return h.dispatcher.Subscribe(handler)
}

func (h *handle) SetOptions(model.AdapterOpenOptions) error { return nil }

func (h *handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()
	h.dispatcher.Clear()
	return nil
}

func (h *handle) Stats() model.AdapterStats {
	return h.stats.Snapshot(time.Now())
}
