package efuse

import (
	"testing"

	"github.com/commwatch/commwatch/internal/codec"
)

func TestDecodeADCFrame(t *testing.T) {
	raw := []byte{0xAA, 0x01, 0x00, 0x02, 0x08, 0x00, 0x5D, 0xAE, 0xBB}
	c := New()
	decoded, ok := c.Decode(raw)
	if !ok {
		t.Fatalf("decode failed for well-formed frame")
	}
	if decoded.Checksum == nil || !decoded.Checksum.Valid {
		t.Fatalf("expected valid checksum, got %+v", decoded.Checksum)
	}
	var adcRaw, voltage *float64
	_ = adcRaw
	_ = voltage
	foundADC := false
	foundVoltage := false
	for _, f := range decoded.Fields {
		if f.Name == "adc_raw" {
			foundADC = true
			if f.Value.Uint16 != 2048 {
				t.Fatalf("adc_raw = %d, want 2048", f.Value.Uint16)
			}
		}
		if f.Name == "voltage" {
			foundVoltage = true
			if f.Value.Float != 1.65 {
				t.Fatalf("voltage = %v, want 1.65", f.Value.Float)
			}
		}
	}
	if !foundADC || !foundVoltage {
		t.Fatalf("missing adc_raw/voltage fields: %+v", decoded.Fields)
	}
	if err := c.Validate(raw); err != nil {
		t.Fatalf("unexpected validate error: %+v", err)
	}
}

func TestDecodeCRCMismatchStillDecodesWithInvalidChecksum(t *testing.T) {
	raw := []byte{0xAA, 0x01, 0x00, 0x02, 0x08, 0x00, 0x00, 0x00, 0xBB}
	c := New()
	decoded, ok := c.Decode(raw)
	if !ok {
		t.Fatalf("decode should still succeed with wrong CRC")
	}
	if decoded.Checksum.Valid {
		t.Fatalf("expected checksum.valid=false")
	}
	fe := c.Validate(raw)
	if fe == nil || fe.Code != "CRC_MISMATCH" {
		t.Fatalf("expected CRC_MISMATCH, got %+v", fe)
	}
}

func TestDecodeLengthMismatchReturnsNone(t *testing.T) {
	raw := []byte{0xAA, 0x01, 0x00, 0x05, 0x08, 0x00, 0x5D, 0xAE, 0xBB}
	c := New()
	_, ok := c.Decode(raw)
	if ok {
		t.Fatalf("decode should return none on length mismatch")
	}
	fe := c.Validate(raw)
	if fe == nil || fe.Code != "LENGTH_MISMATCH" {
		t.Fatalf("expected LENGTH_MISMATCH, got %+v", fe)
	}
}

func TestValidateOrderFrameTooShort(t *testing.T) {
	c := New()
	fe := c.Validate([]byte{0xAA, 0x01})
	if fe == nil || fe.Code != "FRAME_TOO_SHORT" {
		t.Fatalf("expected FRAME_TOO_SHORT, got %+v", fe)
	}
}

func TestValidateInvalidStartMarker(t *testing.T) {
	c := New()
	raw := []byte{0x00, 0x01, 0x00, 0x02, 0x08, 0x00, 0x5D, 0xAE, 0xBB}
	fe := c.Validate(raw)
	if fe == nil || fe.Code != "INVALID_START_MARKER" {
		t.Fatalf("expected INVALID_START_MARKER, got %+v", fe)
	}
}

func TestValidateInvalidEndMarker(t *testing.T) {
	c := New()
	raw := []byte{0xAA, 0x01, 0x00, 0x02, 0x08, 0x00, 0x5D, 0xAE, 0x00}
	fe := c.Validate(raw)
	if fe == nil || fe.Code != "INVALID_END_MARKER" {
		t.Fatalf("expected INVALID_END_MARKER, got %+v", fe)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := New()
	payload := []byte{0x08, 0x00}
	encoded, err := c.Encode([]codec.FieldInput{
		{Name: "type", Uint8: 0x01},
		{Name: "payload", Bytes: payload},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, ok := c.Decode(encoded)
	if !ok {
		t.Fatalf("decode of encoded frame failed")
	}
	if !decoded.Checksum.Valid {
		t.Fatalf("round-tripped frame must have a valid checksum")
	}
	var gotType uint8
	var gotPayload []byte
	for _, f := range decoded.Fields {
		if f.Name == "type" {
			gotType = f.Value.Uint8
		}
		if f.Name == "payload" {
			gotPayload = f.Value.Bytes
		}
	}
	if gotType != 0x01 {
		t.Fatalf("type = %d, want 1", gotType)
	}
	if string(gotPayload) != string(payload) {
		t.Fatalf("payload mismatch: got %x want %x", gotPayload, payload)
	}
}

func TestEncodeMissingRequiredField(t *testing.T) {
	c := New()
	_, err := c.Encode([]codec.FieldInput{{Name: "type", Uint8: 1}})
	if err == nil {
		t.Fatalf("expected missing-field error")
	}
}

func TestStatusPayloadBits(t *testing.T) {
	c := New()
	payload := []byte{0x03}
	encoded, err := c.Encode([]codec.FieldInput{
		{Name: "type", Uint8: 0x02},
		{Name: "payload", Bytes: payload},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, ok := c.Decode(encoded)
	if !ok {
		t.Fatalf("decode failed")
	}
	var ready, hasError bool
	for _, f := range decoded.Fields {
		if f.Name == "ready" {
			ready = f.Value.Uint8 == 1
		}
		if f.Name == "error" {
			hasError = f.Value.Uint8 == 1
		}
	}
	if !ready || !hasError {
		t.Fatalf("expected both ready and error bits set for status=0x03")
	}
}
