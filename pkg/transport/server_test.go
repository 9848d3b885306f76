package transport_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/mash-protocol/mash-udc/pkg/log"
	"github.com/mash-protocol/mash-udc/pkg/transport"
)

type received struct {
	peer net.Addr
	msg  []byte
}

func startServer(t *testing.T, config transport.ServerConfig) (*transport.Server, <-chan received) {
	t.Helper()

	ch := make(chan received, 8)
	config.Address = "127.0.0.1:0"
	config.OnMessage = func(peer net.Addr, msg []byte) {
		ch <- received{peer: peer, msg: msg}
	}

	server, err := transport.NewServer(config)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { server.Stop() })
	return server, ch
}

func TestServerReceivesDatagram(t *testing.T) {
	server, ch := startServer(t, transport.ServerConfig{})

	sender := transport.NewUDPSender(transport.SenderConfig{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sender.Send(ctx, server.Addr().String(), []byte("device-42")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case r := <-ch:
		if !bytes.Equal(r.msg, []byte("device-42")) {
			t.Errorf("expected %q, got %q", "device-42", r.msg)
		}
		if r.peer == nil {
			t.Error("expected peer address")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("datagram not received")
	}
}

func TestServerDropsOversizedDatagram(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	server, ch := startServer(t, transport.ServerConfig{
		MaxMessageSize: 8,
		OnError: func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		},
	})

	conn, err := net.Dial("udp", server.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := conn.Write([]byte("ok")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case r := <-ch:
		if string(r.msg) != "ok" {
			t.Errorf("expected only the small datagram, got %q", r.msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("datagram not received")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(errs) != 1 || !errors.Is(errs[0], transport.ErrDatagramTooLarge) {
		t.Errorf("expected one ErrDatagramTooLarge, got %v", errs)
	}
}

func TestServerLogsFrames(t *testing.T) {
	events := make(chan log.Event, 4)
	server, ch := startServer(t, transport.ServerConfig{
		Logger: log.LoggerFunc(func(e log.Event) { events <- e }),
	})

	conn, err := net.Dial("udp", server.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	<-ch
	select {
	case e := <-events:
		if e.Layer != log.LayerTransport || e.Direction != log.DirectionIn {
			t.Errorf("unexpected event: %+v", e)
		}
		if e.Frame == nil || e.Frame.Size != 3 {
			t.Errorf("expected frame of size 3, got %+v", e.Frame)
		}
		if e.EventID == "" {
			t.Error("expected event ID")
		}
	case <-time.After(time.Second):
		t.Fatal("no frame event")
	}
}

func TestServerRequiresHandler(t *testing.T) {
	if _, err := transport.NewServer(transport.ServerConfig{}); !errors.Is(err, transport.ErrNoHandler) {
		t.Errorf("expected ErrNoHandler, got %v", err)
	}
}

func TestServerStartTwice(t *testing.T) {
	server, _ := startServer(t, transport.ServerConfig{})
	if err := server.Start(context.Background()); !errors.Is(err, transport.ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestServerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server, err := transport.NewServer(transport.ServerConfig{
		Address:   "127.0.0.1:0",
		OnMessage: func(net.Addr, []byte) {},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cancel()

	done := make(chan struct{})
	go func() {
		server.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}

func TestSenderRejectsOversized(t *testing.T) {
	sender := transport.NewUDPSender(transport.SenderConfig{MaxMessageSize: 4})
	err := sender.Send(context.Background(), "127.0.0.1:9", []byte("too long"))
	if !errors.Is(err, transport.ErrDatagramTooLarge) {
		t.Errorf("expected ErrDatagramTooLarge, got %v", err)
	}
}
