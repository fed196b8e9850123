// Package codec owns the ProtocolDecoder capability set (decode,
// encode, validate) described in spec §4.2 and §9, plus the registry
// that maps a protocol name to its codec instance.
//
// Ownership boundary: codecs are pure and stateless across calls, per
// spec §4.2; none of them retain state between invocations.
package codec

import "github.com/commwatch/commwatch/internal/model"

// FieldInput is one named value supplied to Encode. Codecs interpret
// names according to their own wire layout; unknown names are ignored.
type FieldInput struct {
	Name  string
	Uint8 uint8
	Bytes []byte
}

// MissingFieldError is returned by Encode when a mandatory field
// input is absent, per spec §4.2.
type MissingFieldError struct {
	Field string
}

func (e MissingFieldError) Error() string {
	return "codec: missing-required-field: " + e.Field
}

// Codec is the decode/encode/validate triple for one wire format.
// Decode never fails: it returns (nil, false) for any input it cannot
// structurally parse. Validate is independent of Decode and may report
// an error even when Decode returned nothing.
type Codec interface {
	Name() string
	Decode(raw []byte) (*model.DecodedFrame, bool)
	Encode(fields []FieldInput) ([]byte, error)
	Validate(raw []byte) *model.FrameError
}

// Registry maps a protocol name to its Codec instance.
type Registry struct {
	codecs map[string]Codec
	order  []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register adds or replaces the codec under its own Name().
func (r *Registry) Register(c Codec) {
	name := c.Name()
	if _, exists := r.codecs[name]; !exists {
		r.order = append(r.order, name)
	}
	r.codecs[name] = c
}

// Get returns the codec registered under name.
func (r *Registry) Get(name string) (Codec, bool) {
	c, ok := r.codecs[name]
	return c, ok
}

// Names returns registered codec names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
