// Package slip implements Serial Line Internet Protocol framing
// (spec §4.2.3), grounded on the retrieval pack's own SLIP framer
// (END/ESC escaping with a trailing delimiter).
package slip

import (
	"github.com/commwatch/commwatch/internal/codec"
	"github.com/commwatch/commwatch/internal/model"
)

const (
	End    byte = 0xC0
	Esc    byte = 0xDB
	EscEnd byte = 0xDC
	EscEsc byte = 0xDD
)

// Codec implements codec.Codec for SLIP.
type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "slip" }

func (c *Codec) Encode(fields []codec.FieldInput) ([]byte, error) {
	var data []byte
	for _, f := range fields {
		if f.Name == "data" {
			data = f.Bytes
		}
	}
	return Encode(data), nil
}

// Encode replaces each End/Esc byte in data and appends one trailing End.
func Encode(data []byte) []byte {
	out := make([]byte, 0, len(data)+8)
	for _, b := range data {
		switch b {
		case End:
			out = append(out, Esc, EscEnd)
		case Esc:
			out = append(out, Esc, EscEsc)
		default:
			out = append(out, b)
		}
	}
	out = append(out, End)
	return out
}

// Decode consumes bytes until End (terminates decoding) or exhaustion,
// unescaping as it goes. An Esc followed by any byte other than EscEnd
// or EscEsc returns (nil, false).
func Decode(data []byte) ([]byte, bool) {
	out := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		b := data[i]
		if b == End {
			return out, true
		}
		if b == Esc {
			if i+1 >= len(data) {
				return nil, false
			}
			switch data[i+1] {
			case EscEnd:
				out = append(out, End)
			case EscEsc:
				out = append(out, Esc)
			default:
				return nil, false
			}
			i += 2
			continue
		}
		out = append(out, b)
		i++
	}
	return out, true
}

func (c *Codec) Decode(raw []byte) (*model.DecodedFrame, bool) {
	data, ok := Decode(raw)
	if !ok {
		return nil, false
	}
	return &model.DecodedFrame{
		Protocol: "slip",
		Fields: []model.FrameField{
			model.FieldBytes("data", data, 0),
		},
	}, true
}

// Validate reports EMPTY_FRAME only, per spec §4.2.3.
func (c *Codec) Validate(raw []byte) *model.FrameError {
	if len(raw) == 0 {
		return &model.FrameError{Code: "EMPTY_FRAME", Message: "slip frame is empty", Severity: model.SeverityError}
	}
	return nil
}
