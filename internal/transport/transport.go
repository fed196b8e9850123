// Package transport owns the adapter/handle contract of spec §4.3: the
// uniform abstraction that normalizes every wire transport family into
// one timestamped byte-chunk stream with per-handle statistics.
package transport

import (
	"context"
	"errors"

	"github.com/commwatch/commwatch/internal/model"
)

// ErrClosed is returned by Write once Close has run, and by SetOptions
// on the UART and CAN hardware handles. Read, Stats and a repeated
// Close do not return it, and the other handles accept SetOptions
// after Close as a no-op.
var ErrClosed = errors.New("transport: closed")

// ErrDevicePathMissing indicates Open was called without a usable
// device locator.
var ErrDevicePathMissing = errors.New("transport: device-path-missing")

// ErrUnsupportedOption indicates an open option this adapter cannot honor.
var ErrUnsupportedOption = errors.New("transport: unsupported-option")

// ChunkHandler is invoked once per received chunk, per spec §4.3's
// read contract. Handlers are invoked in registration order;
// handlers that panic are recovered, logged, and do not block other
// handlers.
type ChunkHandler func(chunk []byte, meta model.RxMeta)

// Handle is one open transport connection.
type Handle interface {
	// Write transmits bytes as a single logical frame.
	Write(ctx context.Context, data []byte) error
	// Read registers handler for every received chunk and returns an
	// unsubscribe function.
	Read(handler ChunkHandler) (unsubscribe func())
	// SetOptions applies a subset of the original open options.
	SetOptions(opts model.AdapterOpenOptions) error
	// Close releases resources. Idempotent.
	Close() error
	// Stats returns a snapshot of this handle's counters.
	Stats() model.AdapterStats
}

// Adapter enumerates and opens devices for one transport family.
type Adapter interface {
	// ListDevices enumerates currently visible endpoints for this
	// transport. On platforms where enumeration is unsupported, it
	// returns a single simulator entry.
	ListDevices(ctx context.Context) ([]model.DeviceInfo, error)
	// Open acquires the wire described by device with opts applied.
	Open(ctx context.Context, device model.DeviceInfo, opts model.AdapterOpenOptions) (Handle, error)
	// SupportsSimulation reports whether CreateSimulator is usable.
	SupportsSimulation() bool
	// CreateSimulator returns a handle indistinguishable from a real
	// one for read/write semantics.
	CreateSimulator(cfg model.SimulatorConfig) (Handle, error)
}
