package session

import (
	"github.com/commwatch/commwatch/internal/codec"
	"github.com/commwatch/commwatch/internal/codec/asciicodec"
	"github.com/commwatch/commwatch/internal/codec/cobs"
	"github.com/commwatch/commwatch/internal/codec/efuse"
	"github.com/commwatch/commwatch/internal/codec/hexcodec"
	"github.com/commwatch/commwatch/internal/codec/slip"
	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/transport"
	"github.com/commwatch/commwatch/internal/transport/can"
	"github.com/commwatch/commwatch/internal/transport/ethernet"
	"github.com/commwatch/commwatch/internal/transport/i2c"
	"github.com/commwatch/commwatch/internal/transport/spi"
	"github.com/commwatch/commwatch/internal/transport/uart"
)

// DefaultTransportRegistry binds every built-in adapter to its
// transport type, per spec §4.3.
func DefaultTransportRegistry() *transport.Registry {
	r := transport.NewRegistry()
	r.Register(model.TransportUART, uart.New())
	r.Register(model.TransportCAN, can.New())
	r.Register(model.TransportEthernet, ethernet.New())
	r.Register(model.TransportSPI, spi.New())
	r.Register(model.TransportI2C, i2c.New())
	return r
}

// DefaultDecoders returns the fixed-order default codec registry
// [efuse, cobs, slip, hex, ascii], per spec §9. Lives in session
// rather than codec to avoid an import cycle: the concrete codecs
// import codec for the Codec interface, so codec itself cannot import
// them back to build this registry.
func DefaultDecoders() *codec.Registry {
	r := codec.NewRegistry()
	r.Register(efuse.New())
	r.Register(cobs.New())
	r.Register(slip.New())
	r.Register(hexcodec.New())
	r.Register(asciicodec.New())
	return r
}
