package udc

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mash-protocol/mash-udc/pkg/discovery"
	"github.com/mash-protocol/mash-udc/pkg/log"
	"github.com/mash-protocol/mash-udc/pkg/wire"
)

// ServerConfig configures a UDC server.
type ServerConfig struct {
	// Table holds the client records. If nil, a table with default
	// settings is created.
	Table *ClientTable

	// Resolver is asked to locate each newly announced instance name.
	Resolver InstanceNameResolver

	// Confirmation is asked for consent once a node is resolved.
	Confirmation UserConfirmationProvider

	// Logger is optional.
	Logger *slog.Logger

	// ProtocolLogger receives structured protocol events. Optional.
	ProtocolLogger log.Logger
}

// Server is the commissioner side of user-directed commissioning.
type Server struct {
	table          *ClientTable
	logger         *slog.Logger
	protocolLogger log.Logger

	mu           sync.RWMutex
	resolver     InstanceNameResolver
	confirmation UserConfirmationProvider
}

// NewServer creates a UDC server.
func NewServer(config ServerConfig) *Server {
	table := config.Table
	if table == nil {
		table = NewClientTable(TableConfig{})
	}
	return &Server{
		table:          table,
		logger:         config.Logger,
		protocolLogger: config.ProtocolLogger,
		resolver:       config.Resolver,
		confirmation:   config.Confirmation,
	}
}

// Table returns the client table.
func (s *Server) Table() *ClientTable {
	return s.table
}

// SetInstanceNameResolver replaces the resolver. nil disables resolution.
func (s *Server) SetInstanceNameResolver(r InstanceNameResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver = r
}

// SetUserConfirmationProvider replaces the consent provider. nil disables prompting.
func (s *Server) SetUserConfirmationProvider(p UserConfirmationProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmation = p
}

// OnMessageReceived handles one inbound UDC datagram. It never returns an
// error: malformed, encrypted or unexpected messages are logged and dropped.
func (s *Server) OnMessageReceived(peer net.Addr, msg []byte) {
	eventID := uuid.New().String()
	remote := addrString(peer)

	if len(msg) > wire.MaxMessageSize {
		s.drop(eventID, remote, "", log.LayerTransport, "message too large", "size", len(msg))
		return
	}

	ph, rest, err := wire.DecodePacketHeader(msg)
	if err != nil {
		s.drop(eventID, remote, "", log.LayerWire, "malformed packet header", "error", err)
		return
	}
	if ph.IsEncrypted() {
		s.drop(eventID, remote, "", log.LayerWire, "encrypted message not expected",
			"session_id", ph.SessionID, "flags", uint8(ph.Flags))
		return
	}

	pl, payload, err := wire.DecodePayloadHeader(rest)
	if err != nil {
		s.drop(eventID, remote, "", log.LayerWire, "malformed payload header", "error", err)
		return
	}

	s.logEvent(log.Event{
		EventID:    eventID,
		Direction:  log.DirectionIn,
		Layer:      log.LayerWire,
		Category:   log.CategoryMessage,
		RemoteAddr: remote,
		Message: &log.MessageEvent{
			MessageCounter: ph.MessageCounter,
			SessionID:      ph.SessionID,
			Flags:          ph.Flags,
			ProtocolID:     pl.ProtocolID,
			Opcode:         pl.Opcode,
			ExchangeID:     pl.ExchangeID,
			PayloadSize:    len(payload),
		},
	})

	if pl.ProtocolID != wire.ProtocolUserDirectedCommissioning || pl.Opcode != wire.OpcodeIdentificationDeclaration {
		s.drop(eventID, remote, "", log.LayerWire, "unexpected message type",
			"protocol", pl.ProtocolID.String(), "opcode", uint8(pl.Opcode))
		return
	}

	instanceName := boundInstanceName(payload)
	if instanceName == "" {
		s.drop(eventID, remote, "", log.LayerService, "empty instance name")
		return
	}

	s.debugLog("UDC announcement received", "instance", instanceName, "remote", remote)

	_, created, err := s.table.CreateIfAbsent(instanceName, remote)
	if err != nil {
		s.fail(eventID, remote, instanceName, "failed to create client state", err)
		return
	}

	if created {
		s.logStateChange(eventID, remote, instanceName, "", StateDiscoveringNode, "announcement")

		if resolver := s.currentResolver(); resolver != nil {
			s.debugLog("resolving instance name", "instance", instanceName)
			resolver.FindCommissionableNode(instanceName)
		} else {
			s.infoLog("no instance name resolver registered", "instance", instanceName)
		}
	}

	s.table.MarkActive(instanceName)
}

// SetClientProcessingState forces a client into state, creating the record
// when absent. Failures are logged.
func (s *Server) SetClientProcessingState(instanceName string, state ProcessingState) {
	eventID := uuid.New().String()

	if !state.IsValid() {
		s.warnLog("ignoring invalid processing state", "instance", instanceName, "state", state.String())
		return
	}
	instanceName = boundInstanceName([]byte(instanceName))
	if instanceName == "" {
		s.warnLog("ignoring processing state for empty instance name", "state", state.String())
		return
	}

	_, created, err := s.table.CreateIfAbsent(instanceName, "")
	if err != nil {
		s.fail(eventID, "", instanceName, "failed to create client state", err)
		return
	}

	old, ok := s.table.SetState(instanceName, state)
	if !ok {
		// Expired between create and set.
		s.warnLog("client state vanished before update", "instance", instanceName)
		return
	}
	switch {
	case created:
		s.logStateChange(eventID, "", instanceName, "", state, "set")
	case old != state:
		s.logStateChange(eventID, "", instanceName, old.String(), state, "set")
	}

	s.table.MarkActive(instanceName)
}

// OnCommissionableNodeFound is called by the resolver when a node has been
// located. A client in StateDiscoveringNode moves to StatePromptingUser and
// the consent provider is called once. Any other state is ignored.
func (s *Server) OnCommissionableNodeFound(node *discovery.CommissionableService) {
	if node == nil {
		return
	}
	eventID := uuid.New().String()
	name := node.InstanceName

	rec, ok := s.table.CompareAndSetState(name, StateDiscoveringNode, StatePromptingUser)
	if !ok {
		current, found := s.table.Find(name)
		if !found {
			s.debugLog("resolved node has no client state", "instance", name)
		} else {
			s.debugLog("resolved node ignored", "instance", name, "state", current.State.String())
		}
		return
	}

	s.logStateChange(eventID, rec.PeerAddress, name, StateDiscoveringNode.String(), StatePromptingUser, "node resolved")

	provider := s.currentConfirmation()
	if provider == nil {
		s.infoLog("no user confirmation provider registered", "instance", name)
		return
	}
	provider.OnUserDirectedCommissioningRequest(node)
}

// RunReaper purges expired client records every interval until ctx is done.
func (s *Server) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if purged := s.table.PurgeExpired(); purged > 0 {
				s.debugLog("clientReaper: purged expired clients", "count", purged)
			}
		}
	}
}

func (s *Server) currentResolver() InstanceNameResolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolver
}

func (s *Server) currentConfirmation() UserConfirmationProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.confirmation
}

// boundInstanceName reads an instance name from raw payload bytes. The name
// ends at the first NUL and is capped at MaxInstanceNameLen bytes.
func boundInstanceName(b []byte) string {
	if len(b) > MaxInstanceNameLen {
		b = b[:MaxInstanceNameLen]
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}

// drop logs a discarded message at Warn and emits an error event.
func (s *Server) drop(eventID, remote, instance string, layer log.Layer, reason string, args ...any) {
	s.warnLog("UDC message dropped: "+reason, append([]any{"remote", remote}, args...)...)
	s.logEvent(log.Event{
		EventID:      eventID,
		Direction:    log.DirectionIn,
		Layer:        layer,
		Category:     log.CategoryError,
		RemoteAddr:   remote,
		InstanceName: instance,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: reason,
			Context: "OnMessageReceived",
		},
	})
}

// fail logs a table failure at Error and emits an error event.
func (s *Server) fail(eventID, remote, instance, msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "instance", instance, "remote", remote, "error", err)
	}
	s.logEvent(log.Event{
		EventID:      eventID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerService,
		Category:     log.CategoryError,
		RemoteAddr:   remote,
		InstanceName: instance,
		Error: &log.ErrorEventData{
			Layer:   log.LayerService,
			Message: err.Error(),
			Context: msg,
		},
	})
}

func (s *Server) logStateChange(eventID, remote, instance, old string, state ProcessingState, reason string) {
	s.debugLog("UDC client state changed",
		"instance", instance,
		"old_state", old,
		"new_state", state.String(),
		"reason", reason)
	s.logEvent(log.Event{
		EventID:      eventID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerService,
		Category:     log.CategoryState,
		RemoteAddr:   remote,
		InstanceName: instance,
		StateChange: &log.StateChangeEvent{
			OldState: old,
			NewState: state.String(),
			Reason:   reason,
		},
	})
}

func (s *Server) logEvent(event log.Event) {
	if s.protocolLogger == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.protocolLogger.Log(event)
}

func (s *Server) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Server) infoLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) warnLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
