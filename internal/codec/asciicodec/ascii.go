// Package asciicodec implements the ASCII codec of spec §4.2.4: bytes
// interpreted as 7-bit ASCII with a best-effort printable mapping.
package asciicodec

import (
	"github.com/commwatch/commwatch/internal/codec"
	"github.com/commwatch/commwatch/internal/model"
)

// Codec implements codec.Codec for ASCII.
type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "ascii" }

func (c *Codec) Decode(raw []byte) (*model.DecodedFrame, bool) {
	out := make([]byte, len(raw))
	for i, b := range raw {
		if b >= 0x20 && b < 0x7F {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return &model.DecodedFrame{
		Protocol: "ascii",
		Fields: []model.FrameField{
			model.FieldString("text", string(out), raw, 0),
		},
	}, true
}

// Encode takes the "text" field as raw bytes, matching hexcodec's own
// convention of passing string-shaped field input through
// FieldInput.Bytes rather than a distinct string slot.
func (c *Codec) Encode(fields []codec.FieldInput) ([]byte, error) {
	for _, f := range fields {
		if f.Name == "text" {
			return f.Bytes, nil
		}
	}
	return nil, codec.MissingFieldError{Field: "text"}
}

func isPrintableControl(b byte) bool {
	return b == '\t' || b == '\n' || b == '\r'
}

// Validate returns a NON_PRINTABLE warning if any byte is below 0x20
// and not tab/LF/CR, per spec §4.2.4.
func (c *Codec) Validate(raw []byte) *model.FrameError {
	for _, b := range raw {
		if b < 0x20 && !isPrintableControl(b) {
			return &model.FrameError{Code: "NON_PRINTABLE", Message: "frame contains non-printable bytes", Severity: model.SeverityWarning}
		}
	}
	return nil
}
