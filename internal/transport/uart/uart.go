// Package uart implements the UART transport adapter of spec §4.3.1
// on go.bug.st/serial, grounded on the pack's own serial.Open/serial.Mode
// usage in sagostin-goefidash's GPS and ECU readers.
package uart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/simulator"
	"github.com/commwatch/commwatch/internal/transport"
)

const defaultReadTimeout = 200 * time.Millisecond
const readChunkSize = 4096

// Adapter implements transport.Adapter for UART wires.
type Adapter struct{}

// New constructs a UART adapter.
func New() *Adapter { return &Adapter{} }

// ListDevices enumerates serial ports; on systems where enumeration
// finds nothing, it falls back to the simulator device per spec §4.3.
func (a *Adapter) ListDevices(ctx context.Context) ([]model.DeviceInfo, error) {
	ports, err := serial.GetPortsList()
	if err != nil || len(ports) == 0 {
		return []model.DeviceInfo{simulatorDevice()}, nil
	}
	devices := make([]model.DeviceInfo, 0, len(ports))
	for _, p := range ports {
		devices = append(devices, model.DeviceInfo{
			ID:   p,
			Name: p,
			Type: model.TransportUART,
			Path: p,
		})
	}
	return devices, nil
}

func simulatorDevice() model.DeviceInfo {
	return model.DeviceInfo{
		ID:   "uart-sim",
		Name: "UART Simulator",
		Type: model.TransportUART,
		Path: "sim://uart",
	}
}

// SupportsSimulation always returns true: UART's burst frame (EFuse
// ADC) is defined directly by spec §4.4.
func (a *Adapter) SupportsSimulation() bool { return true }

// CreateSimulator returns an engine seeded with the EFuse ADC burst
// generator.
func (a *Adapter) CreateSimulator(cfg model.SimulatorConfig) (transport.Handle, error) {
	return simulator.NewEngine(cfg, simulator.NewEFuseADCSource()), nil
}

// Open configures and opens the named serial port in explicit,
// non-autoOpen mode, per spec §4.3.1.
func (a *Adapter) Open(ctx context.Context, device model.DeviceInfo, opts model.AdapterOpenOptions) (transport.Handle, error) {
	if device.Path == "" {
		return nil, transport.ErrDevicePathMissing
	}
	merged := mergeDefaults(opts)
	mode, err := toSerialMode(merged)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(device.Path, mode)
	if err != nil {
		return nil, fmt.Errorf("uart: open %s: %w", device.Path, err)
	}

	timeout := defaultReadTimeout
	if merged.ReadTimeoutMS > 0 {
		timeout = time.Duration(merged.ReadTimeoutMS) * time.Millisecond
	}
	port.SetReadTimeout(timeout)

	h := &handle{
		port:  port,
		stats: model.NewStatsCounter(time.Now()),
		done:  make(chan struct{}),
	}
	go h.readLoop()
	return h, nil
}

func mergeDefaults(opts model.AdapterOpenOptions) model.AdapterOpenOptions {
	d := model.AdapterOpenOptionsDefaults()
	if opts.BaudRate == 0 {
		opts.BaudRate = d.BaudRate
	}
	if opts.DataBits == 0 {
		opts.DataBits = d.DataBits
	}
	if opts.StopBits == 0 {
		opts.StopBits = d.StopBits
	}
	if opts.Parity == "" {
		opts.Parity = d.Parity
	}
	return opts
}

func toSerialMode(opts model.AdapterOpenOptions) (*serial.Mode, error) {
	parity, err := toSerialParity(opts.Parity)
	if err != nil {
		return nil, err
	}
	stop, err := toSerialStopBits(opts.StopBits)
	if err != nil {
		return nil, err
	}
	return &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		Parity:   parity,
		StopBits: stop,
	}, nil
}

func toSerialParity(p model.Parity) (serial.Parity, error) {
	switch p {
	case model.ParityNone, "":
		return serial.NoParity, nil
	case model.ParityEven:
		return serial.EvenParity, nil
	case model.ParityOdd:
		return serial.OddParity, nil
	case model.ParityMark:
		return serial.MarkParity, nil
	case model.ParitySpace:
		return serial.SpaceParity, nil
	default:
		return 0, transport.ErrUnsupportedOption
	}
}

func toSerialStopBits(sb float64) (serial.StopBits, error) {
	switch sb {
	case 1:
		return serial.OneStopBit, nil
	case 1.5:
		return serial.OnePointFiveStopBits, nil
	case 2:
		return serial.TwoStopBits, nil
	default:
		return 0, transport.ErrUnsupportedOption
	}
}

// handle is a live, non-simulated UART connection.
type handle struct {
	port       serial.Port
	dispatcher transport.Dispatcher
	stats      *model.StatsCounter

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (h *handle) Write(ctx context.Context, data []byte) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return transport.ErrClosed
	}
	h.mu.Unlock()

	n, err := h.port.Write(data)
	if err != nil {
		h.stats.AddError()
		return fmt.Errorf("uart: write: %w", err)
	}
	h.stats.AddTx(uint64(n))
	return nil
}

func (h *handle) Read(handler transport.ChunkHandler) func() {
	return h.dispatcher.Subscribe(handler)
}

// SetOptions hot-changes the live port's baud rate and flow-control
// lines, per spec §4.3.1.
func (h *handle) SetOptions(opts model.AdapterOpenOptions) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return transport.ErrClosed
	}
	h.mu.Unlock()

	if opts.BaudRate != 0 {
		if err := h.port.SetReadTimeout(defaultReadTimeout); err != nil {
			return fmt.Errorf("uart: set read timeout: %w", err)
		}
		mode, err := toSerialMode(mergeDefaults(opts))
		if err != nil {
			return err
		}
		if err := h.port.SetMode(mode); err != nil {
			return fmt.Errorf("uart: set mode: %w", err)
		}
	}
	return nil
}

func (h *handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.done)
	h.dispatcher.Clear()
	return h.port.Close()
}

func (h *handle) Stats() model.AdapterStats {
	return h.stats.Snapshot(time.Now())
}

func (h *handle) readLoop() {
	buf := make([]byte, readChunkSize)
	for {
		select {
		case <-h.done:
			return
		default:
		}
		n, err := h.port.Read(buf)
		if err != nil {
			h.stats.AddError()
			return
		}
		if n == 0 {
			continue
		}
		chunk := append([]byte(nil), buf[:n]...)
		h.stats.AddRx(uint64(n))
		h.dispatcher.Publish(chunk, transport.NowRxMeta(n, nil))
	}
}
