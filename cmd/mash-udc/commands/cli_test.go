package commands

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/mash-udc/pkg/log"
	"github.com/mash-protocol/mash-udc/pkg/transport"
	"github.com/mash-protocol/mash-udc/pkg/wire"
)

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "mash-udc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestConfigShowDefaults(t *testing.T) {
	out, _, err := executeCLI(t, t.TempDir(), "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, ":5550")
	assert.Contains(t, out, "max_clients: 8")
	assert.Contains(t, out, "client_timeout: 1m0s")
	assert.Contains(t, out, "reaper_interval: 10s")
	assert.Contains(t, out, "resolve_timeout: 10s")
	assert.Contains(t, out, "log_level: info")
}

func TestConfigShowPrecedence(t *testing.T) {
	home := t.TempDir()
	path := writeConfig(t, home, "max_clients: 4\nclient_timeout: 30s\nlog_level: warn\n")

	t.Run("file", func(t *testing.T) {
		out, _, err := executeCLI(t, home, "--config", path, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "max_clients: 4")
		assert.Contains(t, out, "client_timeout: 30s")
		assert.Contains(t, out, "log_level: warn")
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("MASH_UDC_MAX_CLIENTS", "3")
		out, _, err := executeCLI(t, home, "--config", path, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "max_clients: 3")
		assert.Contains(t, out, "client_timeout: 30s")
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("MASH_UDC_LOG_LEVEL", "debug")
		out, _, err := executeCLI(t, home, "--config", path, "--log-level", "error", "config", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "log_level: error")
	})
}

func TestConfigShowRejectsInvalid(t *testing.T) {
	home := t.TempDir()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero clients", "max_clients: 0\n", "max_clients must be positive"},
		{"negative timeout", "client_timeout: -1s\n", "client_timeout must be positive"},
		{"bad log level", "log_level: loud\n", "unknown log level"},
		{"consent modes", "auto_approve: true\ninteractive: true\n", "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, _, err := executeCLI(t, home, "--config", path, "config", "show")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigMissingFile(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "--config", "/nonexistent/mash-udc.yaml", "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mash-udc ")
	assert.Contains(t, out, "protocol 1.0")
}

func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.mlog")
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fl.Log(log.Event{
		Timestamp:  base,
		EventID:    "0f3c2a9e-1111-2222-3333-444455556666",
		Direction:  log.DirectionIn,
		Layer:      log.LayerTransport,
		Category:   log.CategoryMessage,
		RemoteAddr: "192.0.2.10:40000",
		Frame:      log.NewFrameEvent([]byte{0xa1, 0x01}),
	})
	fl.Log(log.Event{
		Timestamp:    base.Add(time.Millisecond),
		EventID:      "0f3c2a9e-1111-2222-3333-444455556666",
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		RemoteAddr:   "192.0.2.10:40000",
		InstanceName: "tv-livingroom",
		Message: &log.MessageEvent{
			MessageCounter: 7,
			ProtocolID:     wire.ProtocolUserDirectedCommissioning,
			Opcode:         wire.OpcodeIdentificationDeclaration,
			ExchangeID:     3,
			PayloadSize:    13,
		},
	})
	fl.Log(log.Event{
		Timestamp:    base.Add(2 * time.Millisecond),
		EventID:      "0f3c2a9e-1111-2222-3333-444455556666",
		Direction:    log.DirectionIn,
		Layer:        log.LayerService,
		Category:     log.CategoryState,
		InstanceName: "tv-livingroom",
		StateChange:  &log.StateChangeEvent{NewState: "DISCOVERING_NODE", Reason: "announcement"},
	})
	fl.Log(log.Event{
		Timestamp:  base.Add(time.Second),
		EventID:    "9a8b7c6d-0000-0000-0000-000000000000",
		Direction:  log.DirectionIn,
		Layer:      log.LayerWire,
		Category:   log.CategoryError,
		RemoteAddr: "192.0.2.11:40001",
		Error:      &log.ErrorEventData{Layer: log.LayerWire, Message: "encrypted message", Context: "decode"},
	})
	require.NoError(t, fl.Close())
	return path
}

func TestLogView(t *testing.T) {
	path := writeCapture(t)

	out, _, err := executeCLI(t, t.TempDir(), "log", "view", path)
	require.NoError(t, err)

	assert.Contains(t, out, "2026-03-01T12:00:00.000000Z [evt:0f3c2a9e] IN  TRANSPORT Frame")
	assert.Contains(t, out, "  Data: a101")
	assert.Contains(t, out, "  Protocol: UDC  Opcode: 0x00  Exchange: 3")
	assert.Contains(t, out, "  -> DISCOVERING_NODE")
	assert.Contains(t, out, "  Message: encrypted message")
}

func TestLogViewFilters(t *testing.T) {
	path := writeCapture(t)

	out, _, err := executeCLI(t, t.TempDir(), "log", "view", path, "--instance", "tv-livingroom", "--layer", "service")
	require.NoError(t, err)
	assert.Contains(t, out, "SERVICE State")
	assert.NotContains(t, out, "Frame")
	assert.NotContains(t, out, "WIRE")

	out, _, err = executeCLI(t, t.TempDir(), "log", "view", path, "--category", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "[evt:9a8b7c6d]")
	assert.NotContains(t, out, "[evt:0f3c2a9e]")

	_, _, err = executeCLI(t, t.TempDir(), "log", "view", path, "--layer", "session")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid layer")
}

func TestLogStats(t *testing.T) {
	path := writeCapture(t)

	out, _, err := executeCLI(t, t.TempDir(), "log", "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Events: 4")
	assert.Contains(t, out, "Instances: 1")
	assert.Contains(t, out, "tv-livingroom:")
	assert.Contains(t, out, "Errors: 1")
}

func TestAnnounceSendsDeclarations(t *testing.T) {
	received := make(chan []byte, 4)
	listener, err := transport.NewServer(transport.ServerConfig{
		Address: "127.0.0.1:0",
		OnMessage: func(_ net.Addr, msg []byte) {
			received <- append([]byte(nil), msg...)
		},
	})
	require.NoError(t, err)
	require.NoError(t, listener.Start(context.Background()))
	t.Cleanup(func() { listener.Stop() })

	out, _, err := executeCLI(t, t.TempDir(), "announce",
		"--name", "tv-livingroom",
		"--to", listener.Addr().String(),
		"--count", "2",
		"--interval", "10ms")
	require.NoError(t, err)
	assert.Contains(t, out, `sent identification declaration "tv-livingroom"`)

	for i := 0; i < 2; i++ {
		select {
		case msg := <-received:
			_, rest, err := wire.DecodePacketHeader(msg)
			require.NoError(t, err)
			pl, payload, err := wire.DecodePayloadHeader(rest)
			require.NoError(t, err)
			assert.Equal(t, wire.ProtocolUserDirectedCommissioning, pl.ProtocolID)
			assert.Equal(t, "tv-livingroom", string(payload))
		case <-time.After(2 * time.Second):
			t.Fatalf("declaration %d not received", i+1)
		}
	}
}

func TestAnnounceRejectsBadInput(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "announce")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	_, _, err = executeCLI(t, t.TempDir(), "announce", "--name", "this-name-is-far-too-long")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid instance name")

	_, _, err = executeCLI(t, t.TempDir(), "announce", "--name", "tv", "--count", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count must be at least 1")
}
