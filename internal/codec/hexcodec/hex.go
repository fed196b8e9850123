// Package hexcodec implements the hex codec of spec §4.2.4: decode
// always succeeds, encode accepts either a hex string or raw bytes,
// validate never fails.
package hexcodec

import (
	"encoding/hex"
	"strings"

	"github.com/commwatch/commwatch/internal/codec"
	"github.com/commwatch/commwatch/internal/model"
)

// Codec implements codec.Codec for hex.
type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Name() string { return "hex" }

func (c *Codec) Decode(raw []byte) (*model.DecodedFrame, bool) {
	hexStr := hex.EncodeToString(raw)
	spaced := spaceEvery2(hexStr)
	return &model.DecodedFrame{
		Protocol: "hex",
		Fields: []model.FrameField{
			model.FieldString("hex", spaced, raw, 0),
			model.FieldBytes("raw", raw, 0),
		},
	}, true
}

func spaceEvery2(s string) string {
	if len(s) <= 2 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 2
		if end > len(s) {
			end = len(s)
		}
		b.WriteString(s[i:end])
	}
	return b.String()
}

// Encode accepts either a "hex" field (whitespace ignored, even length
// required) or a "raw" field (bytes). When both are present, a non-nil
// "raw" field is used and "hex" is ignored.
func (c *Codec) Encode(fields []codec.FieldInput) ([]byte, error) {
	for _, f := range fields {
		if f.Name == "raw" && f.Bytes != nil {
			return f.Bytes, nil
		}
	}
	for _, f := range fields {
		if f.Name == "hex" {
			cleaned := stripWhitespace(string(f.Bytes))
			return hex.DecodeString(cleaned)
		}
	}
	return nil, codec.MissingFieldError{Field: "hex or raw"}
}

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Validate never fails for the hex codec, per spec §4.2.4.
func (c *Codec) Validate(raw []byte) *model.FrameError {
	return nil
}
