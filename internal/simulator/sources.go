package simulator

import (
	"encoding/binary"
	"math"

	"github.com/commwatch/commwatch/internal/codec"
	"github.com/commwatch/commwatch/internal/codec/efuse"
)

// EFuseADCSource is the UART burst generator of spec §4.4: an EFuse
// ADC frame whose 12-bit value sweeps sinusoidally around 2048 with
// amplitude 500.
type EFuseADCSource struct {
	codec *efuse.Codec
}

// NewEFuseADCSource constructs the UART burst generator.
func NewEFuseADCSource() *EFuseADCSource {
	return &EFuseADCSource{codec: efuse.New()}
}

func (s *EFuseADCSource) Next(tick uint64) []byte {
	adc := 2048 + int(500*math.Sin(2*math.Pi*float64(tick)/20))
	if adc < 0 {
		adc = 0
	}
	if adc > 4095 {
		adc = 4095
	}
	payload := []byte{byte(adc >> 8), byte(adc)}
	frame, err := s.codec.Encode([]codec.FieldInput{
		{Name: "type", Uint8: 0x01},
		{Name: "payload", Bytes: payload},
	})
	if err != nil {
		return nil
	}
	return frame
}

// CANBurstSource is the CAN burst generator of spec §4.4: four
// synthetic IDs, 0x100/0x200/0x300 cycling on every call plus 0x7E0
// every tenth tick, each frame in the adapter-normalized layout
// [id:u32 big-endian | dlc:u8 | data[dlc]].
type CANBurstSource struct{}

// NewCANBurstSource constructs the CAN burst generator.
func NewCANBurstSource() *CANBurstSource { return &CANBurstSource{} }

const (
	canIDEngineRPM    uint32 = 0x100
	canIDVehicleSpeed uint32 = 0x200
	canIDCoolantTemp  uint32 = 0x300
	canIDOBDRequest   uint32 = 0x7E0
)

func (s *CANBurstSource) Next(tick uint64) []byte {
	id := canIDEngineRPM
	var data []byte
	switch {
	case tick%10 == 0:
		id = canIDOBDRequest
		data = []byte{0x02, 0x01, 0x00, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}
	case tick%3 == 1:
		id = canIDEngineRPM
		rpm := uint16((800 + (tick * 17 % 4000)) * 4)
		data = []byte{byte(rpm >> 8), byte(rpm), 0, 0, 0, 0, 0, 0}
	case tick%3 == 2:
		id = canIDVehicleSpeed
		speed := byte(tick % 200)
		data = []byte{speed, 0, 0, 0, 0, 0, 0, 0}
	default:
		id = canIDCoolantTemp
		temp := byte(70 + tick%50)
		data = []byte{temp, 0, 0, 0, 0, 0, 0, 0}
	}
	return normalizedCANFrame(id, data)
}

func normalizedCANFrame(id uint32, data []byte) []byte {
	out := make([]byte, 0, 5+len(data))
	out = binary.BigEndian.AppendUint32(out, id)
	out = append(out, byte(len(data)))
	out = append(out, data...)
	return out
}

// EchoSource is the raw-echo burst generator used by transports with
// no protocol-specific burst semantics of their own (the Ethernet
// adapter's simulator). It emits an incrementing single byte.
type EchoSource struct{}

// NewEchoSource constructs the fallback burst generator.
func NewEchoSource() *EchoSource { return &EchoSource{} }

func (s *EchoSource) Next(tick uint64) []byte {
	return []byte{byte(tick)}
}
