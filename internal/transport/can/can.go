// Package can implements the CAN transport adapter of spec §4.3.2: a
// software-filtered SocketCAN reader/writer on Linux, with a
// deterministic simulator fallback everywhere else.
//
// Grounded on the pack's notnil-canbus/frame.go for the Linux
// "struct can_frame" wire layout (16 bytes, little-endian, EFF/RTR
// flag bits in the high bits of can_id) — CommWatch's own rx/tx
// representation is the adapter-normalized layout spec.md §4.3.2
// defines, not that kernel struct.
package can

import (
	"encoding/binary"
	"fmt"

	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/simulator"
	"github.com/commwatch/commwatch/internal/transport"
)

// Adapter implements transport.Adapter for CAN wires.
type Adapter struct{}

// New constructs a CAN adapter.
func New() *Adapter { return &Adapter{} }

// SupportsSimulation always returns true.
func (a *Adapter) SupportsSimulation() bool { return true }

// CreateSimulator returns an engine seeded with the four-ID CAN burst
// generator of spec §4.4.
func (a *Adapter) CreateSimulator(cfg model.SimulatorConfig) (transport.Handle, error) {
	return simulator.NewEngine(cfg, simulator.NewCANBurstSource()), nil
}

func simulatorDevice() model.DeviceInfo {
	return model.DeviceInfo{
		ID:   "can-sim",
		Name: "CAN Simulator",
		Type: model.TransportCAN,
		Path: "sim://can",
	}
}

// NormalizeFrame builds the adapter-normalized rx/tx layout of spec
// §4.3.2: [id:u32 big-endian | dlc:u8 | data[dlc]].
func NormalizeFrame(id uint32, data []byte) []byte {
	out := make([]byte, 0, 5+len(data))
	out = binary.BigEndian.AppendUint32(out, id)
	out = append(out, byte(len(data)))
	out = append(out, data...)
	return out
}

// DecodeNormalizedFrame parses the normalized layout on the write
// path: minimum 5 bytes, dlc > 8 is rejected, ext is derived from id.
func DecodeNormalizedFrame(raw []byte) (id uint32, data []byte, ext bool, err error) {
	if len(raw) < 5 {
		return 0, nil, false, fmt.Errorf("can: frame shorter than 5 bytes")
	}
	id = binary.BigEndian.Uint32(raw[0:4])
	dlc := int(raw[4])
	if dlc > 8 {
		return 0, nil, false, fmt.Errorf("can: dlc %d exceeds 8", dlc)
	}
	if len(raw) < 5+dlc {
		return 0, nil, false, fmt.Errorf("can: declared dlc %d exceeds frame length", dlc)
	}
	data = raw[5 : 5+dlc]
	ext = id > 0x7FF
	return id, data, ext, nil
}

// MatchesAnyFilter implements spec §4.3.2's software filter pass rule:
// a message passes if no filters are configured, or if any filter
// matches by (id & mask) == (filter.id & mask) with an optional
// extended-bit pin.
func MatchesAnyFilter(filters []model.CANFilter, id uint32, ext bool) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if (id & f.Mask) != (f.ID & f.Mask) {
			continue
		}
		if f.Extended == nil || *f.Extended == ext {
			return true
		}
	}
	return false
}

// classicalCANFrame encodes the Linux SocketCAN "struct can_frame"
// layout used on the wire to the kernel.
func classicalCANFrame(id uint32, ext, rtr bool, data []byte) []byte {
	const (
		effFlag uint32 = 0x80000000
		rtrFlag uint32 = 0x40000000
	)
	raw := id
	if ext {
		raw |= effFlag
	}
	if rtr {
		raw |= rtrFlag
	}
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], raw)
	buf[4] = byte(len(data))
	copy(buf[8:], data)
	return buf
}

func parseClassicalCANFrame(buf []byte) (id uint32, ext, rtr bool, data []byte, err error) {
	if len(buf) < 16 {
		return 0, false, false, nil, fmt.Errorf("can: need 16 bytes, got %d", len(buf))
	}
	const (
		effFlag uint32 = 0x80000000
		rtrFlag uint32 = 0x40000000
		effMask uint32 = 0x1FFFFFFF
		stdMask uint32 = 0x7FF
	)
	raw := binary.LittleEndian.Uint32(buf[0:4])
	ext = raw&effFlag != 0
	rtr = raw&rtrFlag != 0
	if ext {
		id = raw & effMask
	} else {
		id = raw & stdMask
	}
	dlc := int(buf[4])
	if dlc > 8 {
		dlc = 8
	}
	data = append([]byte(nil), buf[8:8+dlc]...)
	return id, ext, rtr, data, nil
}
