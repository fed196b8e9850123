package model

// TransportType identifies one of the five wire transport families.
type TransportType string

const (
	TransportUART     TransportType = "uart"
	TransportSPI      TransportType = "spi"
	TransportI2C      TransportType = "i2c"
	TransportCAN      TransportType = "can"
	TransportEthernet TransportType = "ethernet"
)

// DeviceInfo is the stable identity of a discovered wire endpoint.
//
// Created by enumeration; immutable thereafter. ID is opaque and
// globally unique only within the enumeration that produced it.
type DeviceInfo struct {
	ID           string
	Name         string
	Type         TransportType
	Path         string
	Vendor       string
	Product      string
	Manufacturer string
	Serial       string
	Metadata     map[string]string
}

// CANFilter matches CAN frames by id/mask, optionally pinned to a
// standard or extended identifier.
type CANFilter struct {
	ID       uint32 `toml:"id"`
	Mask     uint32 `toml:"mask"`
	Extended *bool  `toml:"extended"`
}

// FlowControlLine is one UART flow-control signal.
type FlowControlLine string

const (
	FlowControlRTS     FlowControlLine = "rts"
	FlowControlCTS     FlowControlLine = "cts"
	FlowControlDTR     FlowControlLine = "dtr"
	FlowControlDSR     FlowControlLine = "dsr"
	FlowControlXonXoff FlowControlLine = "xon-xoff"
)

// EthProtocol selects the Ethernet transport's socket kind.
type EthProtocol string

const (
	EthProtocolUDP EthProtocol = "udp"
	EthProtocolTCP EthProtocol = "tcp"
	EthProtocolRaw EthProtocol = "raw"
)

// BitOrder selects SPI shift direction.
type BitOrder string

const (
	BitOrderMSB BitOrder = "msb"
	BitOrderLSB BitOrder = "lsb"
)

// Parity selects UART parity checking.
type Parity string

const (
	ParityNone  Parity = "none"
	ParityEven  Parity = "even"
	ParityOdd   Parity = "odd"
	ParityMark  Parity = "mark"
	ParitySpace Parity = "space"
)

// AdapterOpenOptions is a single options record with a superset of
// fields covering every transport. Each adapter reads only the fields
// relevant to it and ignores the rest, per the contract in spec §3.
//
// Zero values mean "use the transport default"; adapters document
// their defaults at the point they're applied.
type AdapterOpenOptions struct {
	// UART
	BaudRate      int             `toml:"baud_rate"`
	DataBits      int             `toml:"data_bits"`
	StopBits      float64         `toml:"stop_bits"`
	Parity        Parity          `toml:"parity"`
	FlowControl   []FlowControlLine `toml:"flow_control"`
	ReadTimeoutMS int             `toml:"read_timeout_ms"`

	// SPI
	SPIMode      int      `toml:"spi_mode"`
	ClockSpeed   int      `toml:"clock_speed"`
	BitOrder     BitOrder `toml:"bit_order"`
	CSPolarity   int      `toml:"cs_polarity"`
	CSHoldTimeUS int      `toml:"cs_hold_time_us"`

	// I2C
	I2CBusSpeed     int `toml:"i2c_bus_speed"`
	I2CAddressMode  int `toml:"i2c_address_mode"`
	I2CSlaveAddress int `toml:"i2c_slave_address"`

	// CAN
	CANBitrate    int         `toml:"can_bitrate"`
	CANFD         bool        `toml:"can_fd"`
	CANListenOnly bool        `toml:"can_listen_only"`
	CANFilters    []CANFilter `toml:"can_filters"`

	// Ethernet
	EthProtocol  EthProtocol `toml:"eth_protocol"`
	EthPort      int         `toml:"eth_port"`
	EthHost      string      `toml:"eth_host"`
	EthMulticast []string    `toml:"eth_multicast"`
	EthBPFFilter string      `toml:"eth_bpf_filter"`
}

// AdapterOpenOptionsDefaults returns the spec-mandated UART defaults
// applied when the corresponding field is left at its zero value.
func AdapterOpenOptionsDefaults() AdapterOpenOptions {
	return AdapterOpenOptions{
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
	}
}
