package i2c

import (
	"context"
	"testing"
	"time"

	"github.com/commwatch/commwatch/internal/model"
)

func TestReadEEPROMReturnsFilledBytes(t *testing.T) {
	a := New()
	h, err := a.CreateSimulator(model.SimulatorConfig{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer h.Close()

	got := make(chan []byte, 1)
	h.Read(func(chunk []byte, meta model.RxMeta) { got <- chunk })

	req := []byte{addrEEPROM<<1 | 1, 4}
	if err := h.Write(context.Background(), req); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case resp := <-got:
		if len(resp) != 4 {
			t.Fatalf("resp len = %d, want 4", len(resp))
		}
		for _, b := range resp {
			if b != 0xAA {
				t.Fatalf("resp = %v, want all 0xAA", resp)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("read response never arrived")
	}
}

func TestWriteThenReadSensorRoundTrip(t *testing.T) {
	a := New()
	h, _ := a.CreateSimulator(model.SimulatorConfig{})
	defer h.Close()

	got := make(chan []byte, 1)
	h.Read(func(chunk []byte, meta model.RxMeta) { got <- chunk })

	writeReq := append([]byte{addrSensor<<1 | 0, 2}, 0x42, 0x43)
	if err := h.Write(context.Background(), writeReq); err != nil {
		t.Fatalf("write: %v", err)
	}

	readReq := []byte{addrSensor<<1 | 1, 2}
	if err := h.Write(context.Background(), readReq); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case resp := <-got:
		if len(resp) != 2 || resp[0] != 0x42 || resp[1] != 0x43 {
			t.Fatalf("resp = %v, want [0x42 0x43]", resp)
		}
	case <-time.After(time.Second):
		t.Fatal("read response never arrived")
	}
}

func TestReadUnknownAddressReturnsZeroedBuffer(t *testing.T) {
	a := New()
	h, _ := a.CreateSimulator(model.SimulatorConfig{})
	defer h.Close()

	got := make(chan []byte, 1)
	h.Read(func(chunk []byte, meta model.RxMeta) { got <- chunk })

	req := []byte{0x10<<1 | 1, 3}
	h.Write(context.Background(), req)
	select {
	case resp := <-got:
		if len(resp) != 3 {
			t.Fatalf("resp len = %d, want 3", len(resp))
		}
	case <-time.After(time.Second):
		t.Fatal("read response never arrived")
	}
	if h.Stats().Errors == 0 {
		t.Fatal("expected Errors to be incremented for unknown address")
	}
}
