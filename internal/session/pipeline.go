// Package session implements the pipeline of spec §4.5: the single
// live transport handle, monotonic frame-id assignment, decode and
// validate through the configured codec, an append-only session log,
// and event-bus publication.
//
// Grounded on the donor's session.EventOutbox: an RWMutex-guarded map
// driven from whichever goroutine calls its methods, adapted here to
// guard a frame-id counter and an append-only log instead of an
// outbound command queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/commwatch/commwatch/internal/codec"
	"github.com/commwatch/commwatch/internal/eventbus"
	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/observability"
	"github.com/commwatch/commwatch/internal/transport"
)

// ErrAlreadyConnected is returned by Connect when a handle is already live.
var ErrAlreadyConnected = errors.New("session: already-connected")

// ErrNotConnected is returned by Send/Disconnect when no handle is live.
var ErrNotConnected = errors.New("session: not-connected")

// ErrUnknownTransport is returned by Connect when no adapter is
// registered for the requested device type.
var ErrUnknownTransport = errors.New("session: unknown-transport")

// ErrUnknownProtocol is returned by SetProtocol when the requested
// codec name is not registered.
var ErrUnknownProtocol = errors.New("session: unknown-protocol")

// Pipeline holds at most one live handle at a time, per spec §4.5.
type Pipeline struct {
	registry *transport.Registry
	codecs   *codec.Registry
	bus      *eventbus.Bus
	logger   zerolog.Logger

	mu         sync.Mutex
	handle     transport.Handle
	unsub      func()
	protocol   codec.Codec
	deviceType model.TransportType
	nextID     uint64
	log        []model.ProtocolFrame
}

// New constructs a pipeline bound to registry (transport adapters) and
// codecs (protocol decoders), publishing events on bus. The active
// decoder defaults to "efuse", per spec §4.5.
func New(registry *transport.Registry, codecs *codec.Registry, bus *eventbus.Bus, logger zerolog.Logger) (*Pipeline, error) {
	p := &Pipeline{
		registry: registry,
		codecs:   codecs,
		bus:      bus,
		logger:   logger,
	}
	def, ok := codecs.Get("efuse")
	if !ok {
		return nil, fmt.Errorf("session: default codec %q not registered", "efuse")
	}
	p.protocol = def
	return p, nil
}

// SetProtocol switches the active decoder for subsequently received chunks.
func (p *Pipeline) SetProtocol(name string) error {
	c, ok := p.codecs.Get(name)
	if !ok {
		return ErrUnknownProtocol
	}
	p.mu.Lock()
	p.protocol = c
	p.mu.Unlock()
	return nil
}

// Connect looks up the adapter for device.Type, opens it, and
// subscribes to its read stream, per spec §4.5.
func (p *Pipeline) Connect(ctx context.Context, device model.DeviceInfo, opts model.AdapterOpenOptions) error {
	p.mu.Lock()
	if p.handle != nil {
		p.mu.Unlock()
		return ErrAlreadyConnected
	}
	p.mu.Unlock()

	adapter, ok := p.registry.Get(device.Type)
	if !ok {
		return ErrUnknownTransport
	}
	h, err := adapter.Open(ctx, device, opts)
	if err != nil {
		p.bus.Publish(eventbus.EventDeviceError, err)
		return err
	}

	unsub := h.Read(p.onChunk)

	p.mu.Lock()
	p.handle = h
	p.unsub = unsub
	p.deviceType = device.Type
	p.mu.Unlock()

	p.bus.Publish(eventbus.EventDeviceConnected, device)
	return nil
}

// ConnectSimulated opens a simulator handle instead of a real device.
func (p *Pipeline) ConnectSimulated(device model.DeviceInfo, cfg model.SimulatorConfig) error {
	p.mu.Lock()
	if p.handle != nil {
		p.mu.Unlock()
		return ErrAlreadyConnected
	}
	p.mu.Unlock()

	adapter, ok := p.registry.Get(device.Type)
	if !ok {
		return ErrUnknownTransport
	}
	h, err := adapter.CreateSimulator(cfg)
	if err != nil {
		p.bus.Publish(eventbus.EventDeviceError, err)
		return err
	}

	unsub := h.Read(p.onChunk)

	p.mu.Lock()
	p.handle = h
	p.unsub = unsub
	p.deviceType = device.Type
	p.mu.Unlock()

	p.bus.Publish(eventbus.EventDeviceConnected, device)
	return nil
}

// Disconnect closes the live handle, if any.
func (p *Pipeline) Disconnect() error {
	p.mu.Lock()
	h := p.handle
	unsub := p.unsub
	p.handle = nil
	p.unsub = nil
	p.mu.Unlock()

	if h == nil {
		return ErrNotConnected
	}
	if unsub != nil {
		unsub()
	}
	err := h.Close()
	p.bus.Publish(eventbus.EventDeviceDisconnected, nil)
	return err
}

// Send writes data through the live handle, recording a synthetic tx
// frame with a wall-clock timestamp before writing. A failed write
// marks no frame, per spec §4.5.
func (p *Pipeline) Send(ctx context.Context, data []byte) error {
	p.mu.Lock()
	h := p.handle
	transportType := p.deviceType
	p.mu.Unlock()
	if h == nil {
		return ErrNotConnected
	}

	frame := model.ProtocolFrame{
		Timestamp: time.Now().UnixNano(),
		Direction: model.DirectionTx,
		Raw:       append([]byte(nil), data...),
	}

	if err := h.Write(ctx, data); err != nil {
		p.bus.Publish(eventbus.EventFrameError, err)
		return err
	}

	p.mu.Lock()
	p.nextID++
	frame.ID = p.nextID
	p.log = append(p.log, frame)
	p.mu.Unlock()

	observability.RecordFrameSent(string(transportType))
	observability.RecordAdapterBytes(string(transportType), "tx", len(data))
	p.bus.Publish(eventbus.EventFrameSent, frame)
	return nil
}

// Log returns a snapshot of the session's append-only frame log.
func (p *Pipeline) Log() []model.ProtocolFrame {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ProtocolFrame, len(p.log))
	copy(out, p.log)
	return out
}

// Stats returns the live handle's counters, or a zero value if
// nothing is connected.
func (p *Pipeline) Stats() model.AdapterStats {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return model.AdapterStats{}
	}
	stats := h.Stats()
	p.bus.Publish(eventbus.EventStatsUpdate, stats)
	return stats
}

// onChunk is the per-handle read callback: assign frame id, decode,
// validate, append, publish, per spec §4.5.
func (p *Pipeline) onChunk(chunk []byte, meta model.RxMeta) {
	ts := meta.TimestampNS
	if ts == 0 {
		ts = time.Now().UnixNano()
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	proto := p.protocol
	transportType := p.deviceType
	p.mu.Unlock()

	start := time.Now()
	frame := model.ProtocolFrame{
		ID:        id,
		Timestamp: ts,
		Direction: model.DirectionRx,
		Raw:       append([]byte(nil), chunk...),
	}

	if decoded, ok := proto.Decode(chunk); ok {
		frame.Decoded = decoded
	}
	if frameErr := proto.Validate(chunk); frameErr != nil {
		frame.Error = frameErr
	}
	observability.RecordDecodeDuration(proto.Name(), time.Since(start))

	p.mu.Lock()
	p.log = append(p.log, frame)
	p.mu.Unlock()

	observability.RecordAdapterBytes(string(transportType), "rx", len(chunk))

	if frame.Error != nil {
		observability.RecordFrameError(string(transportType), proto.Name(), frame.Error.Code)
		p.bus.Publish(eventbus.EventFrameError, frame)
		p.logger.Warn().
			Str("code", frame.Error.Code).
			Uint64("frame_id", frame.ID).
			Msg("frame failed validation")
	} else {
		observability.RecordFrameReceived(string(transportType), proto.Name())
		p.bus.Publish(eventbus.EventFrameReceived, frame)
	}
}
