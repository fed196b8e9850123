// Package efuse implements the custom delimited EFuse frame format
// defined in spec §4.2.1: the only custom byte-level protocol exposed
// outside the process (spec §6).
package efuse

import (
	"encoding/binary"
	"fmt"

	"github.com/commwatch/commwatch/internal/codec"
	"github.com/commwatch/commwatch/internal/crc"
	"github.com/commwatch/commwatch/internal/model"
)

const (
	startMarker byte = 0xAA
	endMarker   byte = 0xBB
	minLength   int  = 7

	typeADC    byte = 0x01
	typeStatus byte = 0x02
	typeConfig byte = 0x03
)

// Codec implements codec.Codec for the EFuse wire format.
type Codec struct{}

// New constructs an EFuse codec.
func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "efuse" }

// Decode implements spec §4.2.1's decode policy. It is total: any
// structurally invalid input yields (nil, false), never a panic or
// partial frame. CRC mismatches do not block decode; they are surfaced
// through Checksum.Valid instead, per the open question in spec §9.
func (c *Codec) Decode(raw []byte) (*model.DecodedFrame, bool) {
	if len(raw) < minLength {
		return nil, false
	}
	if raw[0] != startMarker {
		return nil, false
	}
	if raw[len(raw)-1] != endMarker {
		return nil, false
	}

	frameType := raw[1]
	length := binary.BigEndian.Uint16(raw[2:4])
	total := 7 + int(length)
	if total != len(raw) {
		return nil, false
	}

	payload := raw[4 : 4+int(length)]
	wireCRC := binary.BigEndian.Uint16(raw[4+int(length) : 6+int(length)])
	calc := crc.CRC16CcittFalse(raw[1 : 4+int(length)])

	fields := []model.FrameField{
		model.FieldUint8("type", frameType, raw[1:2], 1),
		model.FieldUint16("length", length, raw[2:4], 2),
		model.FieldBytes("payload", payload, 4),
	}
	fields = append(fields, payloadFields(frameType, payload)...)

	decoded := &model.DecodedFrame{
		Protocol: "efuse",
		Fields:   fields,
		Checksum: &model.ChecksumInfo{
			Type:       "crc16-ccitt-false",
			Expected:   uint64(wireCRC),
			Calculated: uint64(calc),
			Valid:      wireCRC == calc,
		},
	}
	return decoded, true
}

func payloadFields(frameType byte, payload []byte) []model.FrameField {
	switch frameType {
	case typeADC:
		if len(payload) < 2 {
			return nil
		}
		adcRaw := uint16(payload[0])<<8 | uint16(payload[1])
		voltage := float64(adcRaw) * 3.3 / 4095
		return []model.FrameField{
			model.FieldUint16("adc_raw", adcRaw, payload[0:2], 0),
			model.FieldFloatScaled("voltage", roundTo3(voltage), "V", payload[0:2], 0, 3.3/4095),
		}
	case typeStatus:
		if len(payload) < 1 {
			return nil
		}
		status := payload[0]
		return []model.FrameField{
			model.FieldUint8("status", status, payload[0:1], 0),
			model.FieldBool("ready", status&0x01 != 0, payload[0:1], 0),
			model.FieldBool("error", status&0x02 != 0, payload[0:1], 0),
		}
	case typeConfig:
		if len(payload) < 4 {
			return nil
		}
		v := binary.BigEndian.Uint32(payload[0:4])
		return []model.FrameField{
			model.FieldUint32("config_value", v, payload[0:4], 0),
		}
	default:
		return nil
	}
}

// roundTo3 formats voltage to 3 decimal places worth of precision,
// matching the "%.3f" formatting spec §4.2.1 requires for the voltage
// field without baking string formatting into the field value itself.
func roundTo3(v float64) float64 {
	scaled := v * 1000
	rounded := int64(scaled + 0.5)
	if scaled < 0 {
		rounded = int64(scaled - 0.5)
	}
	return float64(rounded) / 1000
}

// Encode constructs the canonical EFuse wire representation from a
// "type" and "payload" field input. Both are mandatory.
func (c *Codec) Encode(fields []codec.FieldInput) ([]byte, error) {
	var (
		frameType  byte
		havType    bool
		payload    []byte
		havPayload bool
	)
	for _, f := range fields {
		switch f.Name {
		case "type":
			frameType = f.Uint8
			havType = true
		case "payload":
			payload = f.Bytes
			havPayload = true
		}
	}
	if !havType {
		return nil, codec.MissingFieldError{Field: "type"}
	}
	if !havPayload {
		return nil, codec.MissingFieldError{Field: "payload"}
	}
	if len(payload) > 0xFFFF {
		return nil, fmt.Errorf("efuse: payload too large: %d bytes", len(payload))
	}

	length := uint16(len(payload))
	body := make([]byte, 3+len(payload))
	body[0] = frameType
	binary.BigEndian.PutUint16(body[1:3], length)
	copy(body[3:], payload)

	check := crc.CRC16CcittFalse(body)

	out := make([]byte, 0, 6+len(payload))
	out = append(out, startMarker)
	out = append(out, body...)
	out = binary.BigEndian.AppendUint16(out, check)
	out = append(out, endMarker)
	return out, nil
}

// Validate reports the first structural problem found, in the fixed
// order spec §4.2.1 mandates.
func (c *Codec) Validate(raw []byte) *model.FrameError {
	if len(raw) < minLength {
		return &model.FrameError{Code: "FRAME_TOO_SHORT", Message: "frame shorter than minimum 7 bytes", Severity: model.SeverityError}
	}
	if raw[0] != startMarker {
		return &model.FrameError{Code: "INVALID_START_MARKER", Message: "first byte is not 0xAA", Severity: model.SeverityError}
	}
	if raw[len(raw)-1] != endMarker {
		return &model.FrameError{Code: "INVALID_END_MARKER", Message: "last byte is not 0xBB", Severity: model.SeverityError}
	}

	length := binary.BigEndian.Uint16(raw[2:4])
	total := 7 + int(length)
	if total != len(raw) {
		return &model.FrameError{Code: "LENGTH_MISMATCH", Message: "declared length does not match frame size", Severity: model.SeverityError}
	}

	wireCRC := binary.BigEndian.Uint16(raw[4+int(length) : 6+int(length)])
	calc := crc.CRC16CcittFalse(raw[1 : 4+int(length)])
	if wireCRC != calc {
		return &model.FrameError{Code: "CRC_MISMATCH", Message: "CRC16/CCITT-FALSE does not match payload", Severity: model.SeverityError}
	}
	return nil
}
