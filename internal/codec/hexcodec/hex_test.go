package hexcodec

import (
	"bytes"
	"testing"

	"github.com/commwatch/commwatch/internal/codec"
)

func TestDecodeAlwaysSucceeds(t *testing.T) {
	c := New()
	decoded, ok := c.Decode([]byte{0xAB, 0xCD, 0xEF})
	if !ok {
		t.Fatal("hex decode must never fail")
	}
	var hexField string
	for _, f := range decoded.Fields {
		if f.Name == "hex" {
			hexField = f.Value.String
		}
	}
	if hexField != "ab cd ef" {
		t.Fatalf("hex field = %q, want %q", hexField, "ab cd ef")
	}
}

func TestEncodeFromHexString(t *testing.T) {
	c := New()
	out, err := c.Encode([]codec.FieldInput{{Name: "hex", Bytes: []byte("ab cd ef")}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(out, []byte{0xAB, 0xCD, 0xEF}) {
		t.Fatalf("encode mismatch: %x", out)
	}
}

func TestEncodeFromRawBytes(t *testing.T) {
	c := New()
	raw := []byte{0x01, 0x02}
	out, err := c.Encode([]codec.FieldInput{{Name: "raw", Bytes: raw}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("encode mismatch: %x", out)
	}
}

func TestValidateNeverFails(t *testing.T) {
	c := New()
	if fe := c.Validate([]byte{0x00, 0x01, 0xFF}); fe != nil {
		t.Fatalf("expected nil, got %+v", fe)
	}
}
