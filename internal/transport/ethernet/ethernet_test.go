package ethernet

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/commwatch/commwatch/internal/model"
)

func freePort(t *testing.T, network string) int {
	switch network {
	case "udp":
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
		if err != nil {
			t.Fatalf("probe free udp port: %v", err)
		}
		port := conn.LocalAddr().(*net.UDPAddr).Port
		conn.Close()
		return port
	default:
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("probe free tcp port: %v", err)
		}
		port := ln.Addr().(*net.TCPAddr).Port
		ln.Close()
		return port
	}
}

func TestUDPEchoRoundTrip(t *testing.T) {
	a := New()
	port := freePort(t, "udp")
	h, err := a.Open(context.Background(), model.DeviceInfo{}, model.AdapterOpenOptions{
		EthProtocol: model.EthProtocolUDP,
		EthPort:     port,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer h.Close()

	got := make(chan []byte, 1)
	h.Read(func(chunk []byte, meta model.RxMeta) { got <- chunk })

	client, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if _, err := client.Write([]byte("hello")); err != nil {
		t.Fatalf("client write: %v", err)
	}

	select {
	case chunk := <-got:
		if string(chunk) != "hello" {
			t.Fatalf("chunk = %q, want %q", chunk, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("datagram never arrived")
	}

	if err := h.Write(context.Background(), []byte("world")); err != nil {
		t.Fatalf("adapter write: %v", err)
	}

	buf := make([]byte, 64)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if string(buf[:n]) != "world" {
		t.Fatalf("reply = %q, want %q", buf[:n], "world")
	}

	stats := h.Stats()
	if stats.BytesRx != 5 {
		t.Fatalf("bytesRx = %d, want 5", stats.BytesRx)
	}
	if stats.BytesTx != 5 {
		t.Fatalf("bytesTx = %d, want 5", stats.BytesTx)
	}
}

func TestTCPClientDialsListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	a := New()
	h, err := a.Open(context.Background(), model.DeviceInfo{}, model.AdapterOpenOptions{
		EthProtocol: model.EthProtocolTCP,
		EthHost:     "127.0.0.1",
		EthPort:     addr.Port,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer h.Close()

	var server net.Conn
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted connection")
	}
	defer server.Close()

	got := make(chan []byte, 1)
	h.Read(func(chunk []byte, meta model.RxMeta) { got <- chunk })

	if _, err := server.Write([]byte("ping")); err != nil {
		t.Fatalf("server write: %v", err)
	}
	select {
	case chunk := <-got:
		if string(chunk) != "ping" {
			t.Fatalf("chunk = %q, want %q", chunk, "ping")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("chunk never arrived")
	}

	if err := h.Write(context.Background(), []byte("pong")); err != nil {
		t.Fatalf("adapter write: %v", err)
	}
	buf := make([]byte, 64)
	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := server.Read(buf)
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	if string(buf[:n]) != "pong" {
		t.Fatalf("reply = %q, want %q", buf[:n], "pong")
	}
}

func TestTCPListenerAdoptsFirstConnection(t *testing.T) {
	a := New()
	port := freePort(t, "tcp")

	openDone := make(chan struct {
		h   interface{ Close() error }
		err error
	}, 1)
	go func() {
		h, err := a.Open(context.Background(), model.DeviceInfo{}, model.AdapterOpenOptions{
			EthProtocol: model.EthProtocolTCP,
			EthPort:     port,
		})
		openDone <- struct {
			h   interface{ Close() error }
			err error
		}{h, err}
	}()

	var client net.Conn
	var err error
	for i := 0; i < 50; i++ {
		client, err = net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("client dial: %v", err)
	}
	defer client.Close()

	select {
	case res := <-openDone:
		if res.err != nil {
			t.Fatalf("open: %v", res.err)
		}
		defer res.h.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("adapter never accepted connection")
	}
}
