// Command commwatch is the operator-facing CLI of spec §6: record a
// live or simulated session to a JSON export, replay a JSON export
// back onto a transport, or monitor a live session by printing frames
// to stdout as they arrive.
//
// Flag parsing is hand-rolled with the standard library's flag
// package, one flag.NewFlagSet per subcommand, matching the pack's
// own CLI entries (e.g. Knight1-vanmoof-canbus/main.go) rather than a
// third-party CLI framework.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/commwatch/commwatch/internal/eventbus"
	"github.com/commwatch/commwatch/internal/exportlog"
	"github.com/commwatch/commwatch/internal/model"
	"github.com/commwatch/commwatch/internal/observability"
	"github.com/commwatch/commwatch/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "record":
		err = runRecord(os.Args[2:])
	case "replay":
		err = runReplay(os.Args[2:])
	case "monitor":
		err = runMonitor(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "commwatch: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "commwatch: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: commwatch <record|replay|monitor> [flags]")
	fmt.Fprintln(os.Stderr, "  record  -proto TYPE [-port PATH] [-iface NAME] [-simulate] -out FILE")
	fmt.Fprintln(os.Stderr, "  replay  -proto TYPE [-port PATH] [-iface NAME] -in FILE [-speed N]")
	fmt.Fprintln(os.Stderr, "  monitor -proto TYPE [-port PATH] [-iface NAME] [-simulate]")
}

// commonFlags are shared by every subcommand: the transport selector
// and its locator fields, per spec §6.
type commonFlags struct {
	proto    string
	port     string
	iface    string
	baud     int
	simulate bool
}

func bindCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.proto, "proto", "", "transport type: uart, spi, i2c, can, ethernet")
	fs.StringVar(&c.port, "port", "", "device path (uart) or host:port (ethernet)")
	fs.StringVar(&c.iface, "iface", "", "network interface name (can)")
	fs.IntVar(&c.baud, "baud", 115200, "baud rate (uart)")
	fs.BoolVar(&c.simulate, "simulate", false, "use a synthetic simulator instead of real hardware")
	return c
}

func (c *commonFlags) deviceInfo() (model.DeviceInfo, error) {
	t, err := c.transportType()
	if err != nil {
		return model.DeviceInfo{}, err
	}
	path := c.port
	if path == "" {
		path = c.iface
	}
	return model.DeviceInfo{
		ID:   fmt.Sprintf("%s:%s", t, path),
		Name: path,
		Type: t,
		Path: path,
	}, nil
}

func (c *commonFlags) transportType() (model.TransportType, error) {
	switch c.proto {
	case "uart":
		return model.TransportUART, nil
	case "spi":
		return model.TransportSPI, nil
	case "i2c":
		return model.TransportI2C, nil
	case "can":
		return model.TransportCAN, nil
	case "ethernet":
		return model.TransportEthernet, nil
	default:
		return "", fmt.Errorf("unknown -proto %q (want uart, spi, i2c, can, ethernet)", c.proto)
	}
}

func (c *commonFlags) adapterOptions() model.AdapterOpenOptions {
	opts := model.AdapterOpenOptionsDefaults()
	if c.baud > 0 {
		opts.BaudRate = c.baud
	}
	if c.proto == "ethernet" && c.port != "" {
		if host, port, err := net.SplitHostPort(c.port); err == nil {
			opts.EthHost = host
			if n, err := strconv.Atoi(port); err == nil {
				opts.EthPort = n
			}
		}
	}
	return opts
}

func newPipeline(component string) (*session.Pipeline, error) {
	logger := observability.InitLogger(component)
	bus := eventbus.New(logger)
	registry := session.DefaultTransportRegistry()
	codecs := session.DefaultDecoders()
	return session.New(registry, codecs, bus, logger)
}

func connect(ctx context.Context, p *session.Pipeline, c *commonFlags) error {
	device, err := c.deviceInfo()
	if err != nil {
		return err
	}
	if c.simulate {
		return p.ConnectSimulated(device, model.SimulatorConfig{Mode: model.SimulatorLoopback})
	}
	return p.Connect(ctx, device, c.adapterOptions())
}

func runRecord(args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	c := bindCommonFlags(fs)
	out := fs.String("out", "", "output JSON export path")
	duration := fs.Duration("duration", 10*time.Second, "how long to record before writing the export")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("record: -out is required")
	}

	p, err := newPipeline("cli-record")
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	if err := connect(ctx, p, c); err != nil {
		return fmt.Errorf("record: connect: %w", err)
	}
	defer p.Disconnect()

	fmt.Fprintf(os.Stderr, "recording for %s...\n", *duration)
	select {
	case <-ctx.Done():
	case <-time.After(*duration):
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("record: create %s: %w", *out, err)
	}
	defer f.Close()

	frames := p.Log()
	if err := exportlog.WriteJSON(f, frames); err != nil {
		return fmt.Errorf("record: write export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d frames to %s\n", len(frames), *out)
	return nil
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	c := bindCommonFlags(fs)
	in := fs.String("in", "", "input JSON export path")
	speed := fs.Float64("speed", 1.0, "playback speed multiplier (2.0 = twice as fast)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("replay: -in is required")
	}
	if *speed <= 0 {
		return errors.New("replay: -speed must be positive")
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("replay: open %s: %w", *in, err)
	}
	frames, err := exportlog.ReadJSON(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("replay: read export: %w", err)
	}

	p, err := newPipeline("cli-replay")
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	if err := connect(ctx, p, c); err != nil {
		return fmt.Errorf("replay: connect: %w", err)
	}
	defer p.Disconnect()

	var lastTS int64
	sent := 0
	for _, frame := range frames {
		if frame.Direction != model.DirectionTx {
			continue
		}
		if lastTS != 0 {
			gap := time.Duration(frame.Timestamp-lastTS) * time.Nanosecond
			gap = time.Duration(float64(gap) / *speed)
			if gap > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(gap):
				}
			}
		}
		lastTS = frame.Timestamp

		if err := p.Send(ctx, frame.Raw); err != nil {
			return fmt.Errorf("replay: send frame %d: %w", frame.ID, err)
		}
		sent++
	}
	fmt.Fprintf(os.Stderr, "replayed %d tx frames from %s\n", sent, *in)
	return nil
}

func runMonitor(args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	c := bindCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := newPipeline("cli-monitor")
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	if err := connect(ctx, p, c); err != nil {
		return fmt.Errorf("monitor: connect: %w", err)
	}
	defer p.Disconnect()

	fmt.Fprintln(os.Stderr, "monitoring, press ctrl-c to stop")
	seen := 0
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "stopped after %d frames\n", seen)
			return nil
		case <-ticker.C:
			log := p.Log()
			for _, frame := range log[seen:] {
				printFrame(frame)
			}
			seen = len(log)
		}
	}
}

func printFrame(frame model.ProtocolFrame) {
	if frame.Error != nil {
		fmt.Printf("[%d] %s %d bytes ERROR %s: %s\n", frame.ID, frame.Direction, len(frame.Raw), frame.Error.Code, frame.Error.Message)
		return
	}
	if frame.Decoded != nil {
		fmt.Printf("[%d] %s %d bytes decoded=%s fields=%d\n", frame.ID, frame.Direction, len(frame.Raw), frame.Decoded.Protocol, len(frame.Decoded.Fields))
		return
	}
	fmt.Printf("[%d] %s %d bytes raw=%x\n", frame.ID, frame.Direction, len(frame.Raw), frame.Raw)
}

// signalContext cancels on SIGINT/SIGTERM, per the pack's convention
// of handling ctrl-c for long-running CLI commands.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
