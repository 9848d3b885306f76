package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/mash-protocol/mash-udc/pkg/log"
	"github.com/mash-protocol/mash-udc/pkg/wire"
)

// Sender sends one datagram to addr. Implementations do not retry.
type Sender interface {
	Send(ctx context.Context, addr string, data []byte) error
}

// SenderConfig configures a UDPSender.
type SenderConfig struct {
	// MaxMessageSize is the largest datagram sent (default: wire.MaxMessageSize).
	MaxMessageSize int

	// Logger for protocol logging (optional).
	Logger log.Logger
}

// UDPSender sends datagrams from an ephemeral local port.
type UDPSender struct {
	config SenderConfig
}

// NewUDPSender creates a new UDP sender.
func NewUDPSender(config SenderConfig) *UDPSender {
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = wire.MaxMessageSize
	}
	return &UDPSender{config: config}
}

// Send writes data as one datagram to addr.
func (s *UDPSender) Send(ctx context.Context, addr string, data []byte) error {
	if len(data) > s.config.MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrDatagramTooLarge, len(data))
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to send datagram: %w", err)
	}

	if s.config.Logger != nil {
		s.config.Logger.Log(log.Event{
			Timestamp:  time.Now(),
			EventID:    uuid.New().String(),
			Direction:  log.DirectionOut,
			Layer:      log.LayerTransport,
			Category:   log.CategoryMessage,
			RemoteAddr: conn.RemoteAddr().String(),
			Frame:      log.NewFrameEvent(data),
		})
	}
	return nil
}

var _ Sender = (*UDPSender)(nil)
