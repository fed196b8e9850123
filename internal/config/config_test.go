package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadDeviceConfigValid(t *testing.T) {
	path := writeTempFile(t, `id = "uart0"
name = "board"
type = "uart"
path = "/dev/ttyUSB0"
`)
	cfg, err := LoadDeviceConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ID != "uart0" || cfg.Type != "uart" {
		t.Fatalf("got %+v", cfg)
	}
}

func TestLoadDeviceConfigRejectsUnknownType(t *testing.T) {
	path := writeTempFile(t, `id = "x"
type = "bluetooth"
`)
	if _, err := LoadDeviceConfig(path); err == nil {
		t.Fatal("expected error for unknown transport type")
	}
}

func TestValidateProtocolConfigRejectsUnregistered(t *testing.T) {
	cfg := ProtocolConfig{Name: "nonexistent"}
	if err := ValidateProtocolConfig(cfg, []string{"efuse", "cobs"}); err == nil {
		t.Fatal("expected error for unregistered protocol")
	}
}

func TestValidateProtocolConfigAcceptsRegistered(t *testing.T) {
	cfg := ProtocolConfig{Name: "cobs"}
	if err := ValidateProtocolConfig(cfg, []string{"efuse", "cobs"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadSessionConfigValid(t *testing.T) {
	path := writeTempFile(t, `[device]
id = "uart0"
type = "uart"

[protocol]
name = "efuse"

[adapter_options]
baud_rate = 9600
`)
	cfg, err := LoadSessionConfig(path, []string{"efuse"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AdapterOptions.BaudRate != 9600 {
		t.Fatalf("baud rate = %d, want 9600", cfg.AdapterOptions.BaudRate)
	}
}

func TestTemplateUnknownKind(t *testing.T) {
	if _, err := Template("bogus"); err == nil {
		t.Fatal("expected error for unknown template kind")
	}
}

func TestWriteTemplateRefusesOverwriteByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	if err := WriteTemplate(path, "device", false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteTemplate(path, "device", false); err == nil {
		t.Fatal("expected error on second write without overwrite")
	}
	if err := WriteTemplate(path, "device", true); err != nil {
		t.Fatalf("overwrite write: %v", err)
	}
}
