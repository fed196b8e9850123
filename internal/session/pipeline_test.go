package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/commwatch/commwatch/internal/eventbus"
	"github.com/commwatch/commwatch/internal/model"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(DefaultTransportRegistry(), DefaultDecoders(), eventbus.New(zerolog.Nop()), zerolog.Nop())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}

func TestConnectSimulatedAssignsMonotonicFrameIDs(t *testing.T) {
	p := newTestPipeline(t)
	script := &model.SimulatorScript{Events: []model.SimulatorEvent{
		{DelayMS: 1, Action: model.SimActionSend, Data: []byte("AA01000200005DAEBB")},
	}}
	device := model.DeviceInfo{Type: model.TransportUART}
	if err := p.ConnectSimulated(device, model.SimulatorConfig{Mode: model.SimulatorScripted, Script: script}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Disconnect()

	time.Sleep(100 * time.Millisecond)
	log := p.Log()
	if len(log) == 0 {
		t.Fatal("expected at least one frame in the session log")
	}
	for i, f := range log {
		if f.ID != uint64(i+1) {
			t.Fatalf("frame %d has id %d, want %d", i, f.ID, i+1)
		}
	}
}

func TestConnectTwiceFails(t *testing.T) {
	p := newTestPipeline(t)
	device := model.DeviceInfo{Type: model.TransportSPI}
	if err := p.ConnectSimulated(device, model.SimulatorConfig{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Disconnect()

	if err := p.ConnectSimulated(device, model.SimulatorConfig{}); err != ErrAlreadyConnected {
		t.Fatalf("second connect = %v, want ErrAlreadyConnected", err)
	}
}

func TestSendWithoutConnectionFails(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.Send(context.Background(), []byte("x")); err != ErrNotConnected {
		t.Fatalf("send = %v, want ErrNotConnected", err)
	}
}

func TestSetProtocolUnknownNameFails(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.SetProtocol("does-not-exist"); err != ErrUnknownProtocol {
		t.Fatalf("SetProtocol = %v, want ErrUnknownProtocol", err)
	}
}

func TestDecodedEFuseFrameAppearsInLog(t *testing.T) {
	p := newTestPipeline(t)
	// AA 01 00 02 08 00 5D AE BB: EFuse ADC frame, adc_raw=0x0800.
	frameBytes := []byte{0xAA, 0x01, 0x00, 0x02, 0x08, 0x00, 0x5D, 0xAE, 0xBB}
	script := &model.SimulatorScript{Events: []model.SimulatorEvent{
		{DelayMS: 1, Action: model.SimActionSend, Data: frameBytes},
	}}
	device := model.DeviceInfo{Type: model.TransportUART}
	if err := p.ConnectSimulated(device, model.SimulatorConfig{Mode: model.SimulatorScripted, Script: script}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Disconnect()

	time.Sleep(100 * time.Millisecond)
	log := p.Log()
	if len(log) != 1 {
		t.Fatalf("log length = %d, want 1", len(log))
	}
	if log[0].Decoded == nil || log[0].Decoded.Protocol != "efuse" {
		t.Fatalf("expected decoded efuse frame, got %+v", log[0].Decoded)
	}
	if log[0].Error != nil {
		t.Fatalf("unexpected validation error: %+v", log[0].Error)
	}
}
