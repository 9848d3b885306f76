package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mash-protocol/mash-udc/pkg/log"
	"github.com/mash-protocol/mash-udc/pkg/wire"
)

// DefaultPort is the default UDC listen port.
const DefaultPort = 5550

// Transport errors.
var (
	ErrDatagramTooLarge = errors.New("datagram exceeds maximum size")
	ErrNoHandler        = errors.New("OnMessage handler is required")
	ErrAlreadyRunning   = errors.New("server already running")
)

// ServerConfig configures a UDP server.
type ServerConfig struct {
	// Address to listen on (e.g., ":5550" or "127.0.0.1:0").
	Address string

	// MaxMessageSize is the largest datagram delivered (default: wire.MaxMessageSize).
	MaxMessageSize int

	// Logger for protocol logging (optional).
	Logger log.Logger

	// OnMessage is called for every received datagram. It runs on the
	// receive goroutine and must not block.
	OnMessage func(peer net.Addr, msg []byte)

	// OnError is called when a receive fails or a datagram is dropped.
	OnError func(err error)
}

// Server receives UDC datagrams.
type Server struct {
	config ServerConfig
	conn   net.PacketConn

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a new UDP server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.OnMessage == nil {
		return nil, ErrNoHandler
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = wire.MaxMessageSize
	}
	return &Server{config: config}, nil
}

// Start binds the socket and begins receiving. The server stops when ctx
// is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", s.config.Address)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.conn = conn
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.readLoop()
	go func() {
		defer s.wg.Done()
		<-s.ctx.Done()
		s.running.Store(false)
		_ = s.conn.Close()
	}()

	return nil
}

// Stop closes the socket and waits for the receive loop to exit.
func (s *Server) Stop() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.conn != nil {
		return s.conn.LocalAddr()
	}
	return nil
}

// readLoop receives datagrams until the socket is closed.
func (s *Server) readLoop() {
	defer s.wg.Done()

	// One spare byte detects datagrams larger than the limit.
	buf := make([]byte, s.config.MaxMessageSize+1)
	var backoff readBackoff
	for {
		n, peer, err := s.conn.ReadFrom(buf)
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			delay := backoff.next()
			s.reportError(fmt.Errorf("read error (retrying in %s): %w", delay, err))
			select {
			case <-time.After(delay):
				continue
			case <-s.ctx.Done():
				return
			}
		}
		backoff.reset()

		data := make([]byte, n)
		copy(data, buf[:n])
		s.logFrame(peer, data)

		if n > s.config.MaxMessageSize {
			s.reportError(fmt.Errorf("%w: from %s", ErrDatagramTooLarge, peer))
			continue
		}

		s.config.OnMessage(peer, data)
	}
}

// Retry delays after consecutive read errors.
const (
	minReadBackoff = 5 * time.Millisecond
	maxReadBackoff = time.Second
)

// readBackoff doubles the retry delay on each consecutive read error.
type readBackoff struct {
	delay time.Duration
}

func (b *readBackoff) next() time.Duration {
	if b.delay == 0 {
		b.delay = minReadBackoff
	} else {
		b.delay *= 2
	}
	if b.delay > maxReadBackoff {
		b.delay = maxReadBackoff
	}
	return b.delay
}

func (b *readBackoff) reset() {
	b.delay = 0
}

func (s *Server) reportError(err error) {
	if s.config.OnError != nil {
		s.config.OnError(err)
	}
}

func (s *Server) logFrame(peer net.Addr, data []byte) {
	if s.config.Logger == nil {
		return
	}
	s.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		EventID:    uuid.New().String(),
		Direction:  log.DirectionIn,
		Layer:      log.LayerTransport,
		Category:   log.CategoryMessage,
		RemoteAddr: peer.String(),
		Frame:      log.NewFrameEvent(data),
	})
}
