// Package config defines the TOML-backed configuration schemas of
// spec §2/§4.8: DeviceConfig, ProtocolConfig, and SessionConfig. These
// are validation-only — they describe a device/session without
// opening one.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/commwatch/commwatch/internal/model"
)

// DeviceConfig mirrors model.DeviceInfo for TOML files, per spec §4.8.
type DeviceConfig struct {
	ID           string            `toml:"id"`
	Name         string            `toml:"name"`
	Type         string            `toml:"type"`
	Path         string            `toml:"path"`
	Vendor       string            `toml:"vendor"`
	Product      string            `toml:"product"`
	Manufacturer string            `toml:"manufacturer"`
	Serial       string            `toml:"serial"`
	Metadata     map[string]string `toml:"metadata"`
}

// ProtocolConfig names a registered codec, per spec §4.8. Options is
// reserved for future codec parameters; ValidateProtocolConfig does
// not inspect it.
type ProtocolConfig struct {
	Name    string         `toml:"name"`
	Options map[string]any `toml:"options"`
}

// SessionConfig binds a device, a protocol, and adapter options into
// one session-starting record, per spec §4.8.
type SessionConfig struct {
	Device         DeviceConfig              `toml:"device"`
	Protocol       ProtocolConfig            `toml:"protocol"`
	AdapterOptions model.AdapterOpenOptions `toml:"adapter_options"`
}

var validTransportTypes = map[string]bool{
	string(model.TransportUART):     true,
	string(model.TransportSPI):      true,
	string(model.TransportI2C):      true,
	string(model.TransportCAN):      true,
	string(model.TransportEthernet): true,
}

// LoadDeviceConfig parses and validates a device config file.
func LoadDeviceConfig(path string) (DeviceConfig, error) {
	var cfg DeviceConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DeviceConfig{}, fmt.Errorf("config: load device config (%s): %w", path, err)
	}
	if err := ValidateDeviceConfig(cfg); err != nil {
		return DeviceConfig{}, err
	}
	return cfg, nil
}

// ValidateDeviceConfig checks the required fields of a DeviceConfig.
func ValidateDeviceConfig(cfg DeviceConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("config: device config missing id")
	}
	if !validTransportTypes[cfg.Type] {
		return fmt.Errorf("config: device config has unknown type %q", cfg.Type)
	}
	return nil
}

// LoadProtocolConfig parses and validates a protocol config file.
// known is the set of registered codec names (codec.Registry.Names()).
func LoadProtocolConfig(path string, known []string) (ProtocolConfig, error) {
	var cfg ProtocolConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return ProtocolConfig{}, fmt.Errorf("config: load protocol config (%s): %w", path, err)
	}
	if err := ValidateProtocolConfig(cfg, known); err != nil {
		return ProtocolConfig{}, err
	}
	return cfg, nil
}

// ValidateProtocolConfig checks Name against the known codec names.
func ValidateProtocolConfig(cfg ProtocolConfig, known []string) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config: protocol config missing name")
	}
	for _, name := range known {
		if name == cfg.Name {
			return nil
		}
	}
	return fmt.Errorf("config: protocol %q is not a registered codec", cfg.Name)
}

// LoadSessionConfig parses and validates a full session config file.
func LoadSessionConfig(path string, knownProtocols []string) (SessionConfig, error) {
	var cfg SessionConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return SessionConfig{}, fmt.Errorf("config: load session config (%s): %w", path, err)
	}
	if err := ValidateSessionConfig(cfg, knownProtocols); err != nil {
		return SessionConfig{}, err
	}
	return cfg, nil
}

// ValidateSessionConfig validates the nested device and protocol
// configs of a SessionConfig.
func ValidateSessionConfig(cfg SessionConfig, knownProtocols []string) error {
	if err := ValidateDeviceConfig(cfg.Device); err != nil {
		return err
	}
	if err := ValidateProtocolConfig(cfg.Protocol, knownProtocols); err != nil {
		return err
	}
	return nil
}
