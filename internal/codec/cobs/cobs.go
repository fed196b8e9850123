// Package cobs implements standard Consistent Overhead Byte Stuffing
// (spec §4.2.2) without a trailing delimiter byte in the encoded
// representation.
//
// The block/code-byte structure mirrors the run-length idiom found
// throughout the retrieval pack's COBS-family framers, adapted to the
// spec's "no trailing delimiter" contract instead of a
// delimiter-terminated variant.
package cobs

import (
	"github.com/commwatch/commwatch/internal/codec"
	"github.com/commwatch/commwatch/internal/model"
)

const maxBlock = 0xFF

// Codec implements codec.Codec for COBS.
type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "cobs" }

// Encode packs data into the encoded-frame field. COBS has no notion
// of a missing required field; "data" is optional and defaults empty.
func (c *Codec) Encode(fields []codec.FieldInput) ([]byte, error) {
	var data []byte
	for _, f := range fields {
		if f.Name == "data" {
			data = f.Bytes
		}
	}
	return Encode(data), nil
}

// Encode produces the COBS-encoded representation of data.
func Encode(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/254+1)
	codeIndex := 0
	out = append(out, 0)
	code := byte(1)

	flush := func() {
		out[codeIndex] = code
		codeIndex = len(out)
		out = append(out, 0)
		code = 1
	}

	for _, b := range data {
		if b == 0 {
			flush()
			continue
		}
		out = append(out, b)
		code++
		if code == maxBlock {
			flush()
		}
	}
	out[codeIndex] = code
	return out
}

// Decode reverses Encode. It returns (nil, false) for any input it
// cannot structurally parse — a code byte of 0, or a block that
// overruns the remaining input — never a panic or partial result.
func Decode(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	out := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		code := data[i]
		if code == 0 {
			return nil, false
		}
		i++
		n := int(code) - 1
		if i+n > len(data) {
			return nil, false
		}
		out = append(out, data[i:i+n]...)
		i += n
		if code < maxBlock && i < len(data) {
			out = append(out, 0)
		}
	}
	return out, true
}

func (c *Codec) Decode(raw []byte) (*model.DecodedFrame, bool) {
	data, ok := Decode(raw)
	if !ok {
		return nil, false
	}
	return &model.DecodedFrame{
		Protocol: "cobs",
		Fields: []model.FrameField{
			model.FieldBytes("data", data, 0),
		},
	}, true
}

// Validate reports EMPTY_FRAME or INVALID_COBS on decode failure, per
// spec §4.2.2.
func (c *Codec) Validate(raw []byte) *model.FrameError {
	if len(raw) == 0 {
		return &model.FrameError{Code: "EMPTY_FRAME", Message: "cobs frame is empty", Severity: model.SeverityError}
	}
	if _, ok := Decode(raw); !ok {
		return &model.FrameError{Code: "INVALID_COBS", Message: "cobs frame could not be decoded", Severity: model.SeverityError}
	}
	return nil
}
