//go:build linux

package can

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/transport"
)

// arphrdCAN is the ARPHRD_CAN interface type reported under
// /sys/class/net/<iface>/type for SocketCAN interfaces.
const arphrdCAN = "280"

// ListDevices enumerates SocketCAN interfaces, per spec §4.3.2.
func (a *Adapter) ListDevices(ctx context.Context) ([]model.DeviceInfo, error) {
	entries, err := os.ReadDir("/sys/class/net")
	if err != nil {
		return []model.DeviceInfo{simulatorDevice()}, nil
	}
	var devices []model.DeviceInfo
	for _, e := range entries {
		raw, err := os.ReadFile(filepath.Join("/sys/class/net", e.Name(), "type"))
		if err != nil || strings.TrimSpace(string(raw)) != arphrdCAN {
			continue
		}
		devices = append(devices, model.DeviceInfo{
			ID:   e.Name(),
			Name: e.Name(),
			Type: model.TransportCAN,
			Path: e.Name(),
		})
	}
	if len(devices) == 0 {
		return []model.DeviceInfo{simulatorDevice()}, nil
	}
	return devices, nil
}

// Open binds a raw AF_CAN/CAN_RAW socket to the named interface.
func (a *Adapter) Open(ctx context.Context, device model.DeviceInfo, opts model.AdapterOpenOptions) (transport.Handle, error) {
	if device.Path == "" {
		return nil, transport.ErrDevicePathMissing
	}
	iface, err := net.InterfaceByName(device.Path)
	if err != nil {
		return nil, fmt.Errorf("can: interface %s: %w", device.Path, err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("can: socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: iface.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("can: bind %s: %w", device.Path, err)
	}

	h := &handle{
		fd:      fd,
		filters: opts.CANFilters,
		stats:   model.NewStatsCounter(time.Now()),
		done:    make(chan struct{}),
	}
	go h.readLoop()
	return h, nil
}

// handle is a live SocketCAN connection.
type handle struct {
	fd         int
	dispatcher transport.Dispatcher
	stats      *model.StatsCounter

	mu      sync.Mutex
	filters []model.CANFilter
	closed  bool
	done    chan struct{}
}

func (h *handle) Write(ctx context.Context, data []byte) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return transport.ErrClosed
	}
	h.mu.Unlock()

	id, payload, ext, err := DecodeNormalizedFrame(data)
	if err != nil {
		h.stats.AddError()
		return err
	}
	frame := classicalCANFrame(id, ext, false, payload)
	if _, err := unix.Write(h.fd, frame); err != nil {
		h.stats.AddError()
		return fmt.Errorf("can: write: %w", err)
	}
	h.stats.AddTx(uint64(len(data)))
	return nil
}

func (h *handle) Read(handler transport.ChunkHandler) func() {
	return h.dispatcher.Subscribe(handler)
}

// SetOptions replaces the software filter set, per spec §4.3.2.
func (h *handle) SetOptions(opts model.AdapterOpenOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return transport.ErrClosed
	}
	if opts.CANFilters != nil {
		h.filters = opts.CANFilters
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
	return unix.Close(h.fd)
}

func (h *handle) Stats() model.AdapterStats {
	return h.stats.Snapshot(time.Now())
}

func (h *handle) readLoop() {
	buf := make([]byte, 16)
	for {
		select {
		case <-h.done:
			return
		default:
		}
		n, err := unix.Read(h.fd, buf)
		if err != nil {
			h.stats.AddError()
			return
		}
		id, ext, rtr, data, err := parseClassicalCANFrame(buf[:n])
		if err != nil {
			h.stats.AddError()
			continue
		}

		h.mu.Lock()
		filters := h.filters
		h.mu.Unlock()
		if !MatchesAnyFilter(filters, id, ext) {
			continue
		}

		chunk := NormalizeFrame(id, data)
		h.stats.AddRx(uint64(len(chunk)))
		h.dispatcher.Publish(chunk, transport.NowRxMeta(len(chunk), map[string]any{
			"can_id":   id,
			"extended": ext,
			"rtr":      rtr,
		}))
	}
}
