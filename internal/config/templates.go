package config

import (
	"fmt"
	"os"
	"strings"
)

// Template returns a starter TOML document for kind ("device",
// "protocol", or "session"), per spec §4.8.
func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "device":
		return deviceTemplate, nil
	case "protocol":
		return protocolTemplate, nil
	case "session":
		return sessionTemplate, nil
	default:
		return "", fmt.Errorf("config: unknown config kind: %s", kind)
	}
}

// WriteTemplate writes Template(kind) to path, refusing to overwrite
// an existing file unless overwrite is set.
func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const deviceTemplate = `id = "uart0"
name = "EFuse board"
type = "uart"
path = "/dev/ttyUSB0"
vendor = ""
product = ""
manufacturer = ""
serial = ""

[metadata]
`

const protocolTemplate = `name = "efuse"

[options]
`

const sessionTemplate = `[device]
id = "uart0"
name = "EFuse board"
type = "uart"
path = "/dev/ttyUSB0"

[protocol]
name = "efuse"

[adapter_options]
baud_rate = 115200
data_bits = 8
stop_bits = 1
parity = "none"
`
