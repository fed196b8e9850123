package model

// Direction marks which way a chunk or frame crossed the wire.
type Direction string

const (
	DirectionRx Direction = "rx"
	DirectionTx Direction = "tx"
)

// RxMeta is per-chunk metadata attached by the adapter that produced a
// chunk. Timestamp is nanosecond-resolution and, within a single
// handle, strictly non-decreasing (spec §3 invariant on RxMeta).
type RxMeta struct {
	TimestampNS       int64
	Direction         Direction
	Length            int
	Error             string
	TransportSpecific map[string]any
}
