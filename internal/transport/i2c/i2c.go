// Package i2c implements the I²C simulator of spec §4.3.4. Like SPI,
// I²C is simulation-only: no I²C hardware library appears anywhere in
// the retrieval pack and spec.md §1 never exposes real I²C hardware.
package i2c

import (
	"context"
	"sync"
	"time"

	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/transport"
)

const readLatency = 2 * time.Millisecond

const (
	addrEEPROM byte = 0x50
	addrSensor byte = 0x68
)

// Adapter implements transport.Adapter for the I²C simulator.
type Adapter struct{}

// New constructs an I²C adapter.
func New() *Adapter { return &Adapter{} }

func device() model.DeviceInfo {
	return model.DeviceInfo{
		ID:   "i2c-sim",
		Name: "I2C Simulator",
		Type: model.TransportI2C,
		Path: "sim://i2c",
	}
}

// ListDevices always returns the single simulator device.
func (a *Adapter) ListDevices(ctx context.Context) ([]model.DeviceInfo, error) {
	return []model.DeviceInfo{device()}, nil
}

// SupportsSimulation always returns true.
func (a *Adapter) SupportsSimulation() bool { return true }

// CreateSimulator returns a fresh virtual-device-table handle.
func (a *Adapter) CreateSimulator(cfg model.SimulatorConfig) (transport.Handle, error) {
	return newHandle(), nil
}

// Open also returns the virtual-device-table handle: I²C never
// touches real hardware in this system's scope.
func (a *Adapter) Open(ctx context.Context, device model.DeviceInfo, opts model.AdapterOpenOptions) (transport.Handle, error) {
	return newHandle(), nil
}

type handle struct {
	devices    map[byte][]byte
	dispatcher transport.Dispatcher
	stats      *model.StatsCounter

	mu     sync.Mutex
	closed bool
}

func newHandle() *handle {
	eeprom := make([]byte, 256)
	for i := range eeprom {
		eeprom[i] = 0xAA
	}
	return &handle{
		stats: model.NewStatsCounter(time.Now()),
		devices: map[byte][]byte{
			addrEEPROM: eeprom,
			addrSensor: {0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		},
	}
}

// Write implements the I²C virtual-device protocol of spec §4.3.4:
// [addr<<1|rw, length, ...]. rw==1 reads, rw==0 writes.
func (h *handle) Write(ctx context.Context, data []byte) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return transport.ErrClosed
	}
	h.mu.Unlock()

	if len(data) < 2 {
		h.stats.AddError()
		return nil
	}
	addr := data[0] >> 1
	rw := data[0] & 0x01
	length := int(data[1])

	h.stats.AddTx(uint64(len(data)))

	if rw == 1 {
		resp := h.read(addr, length)
		time.AfterFunc(readLatency, func() { h.deliver(resp) })
		return nil
	}
	h.write(addr, data[2:])
	return nil
}

func (h *handle) read(addr byte, length int) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf, ok := h.devices[addr]
	if !ok {
		h.stats.AddError()
		return make([]byte, length)
	}
	if length > len(buf) {
		length = len(buf)
	}
	resp := make([]byte, length)
	copy(resp, buf[:length])
	return resp
}

func (h *handle) write(addr byte, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf, ok := h.devices[addr]
	if !ok {
		h.stats.AddError()
		return
	}
	n := len(data)
	if n > len(buf) {
		n = len(buf)
	}
	copy(buf[:n], data[:n])
}

func (h *handle) deliver(resp []byte) {
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
