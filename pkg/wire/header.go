package wire

import (
	"errors"
	"fmt"
)

// PacketVersion is the only packet header version this package understands.
const PacketVersion uint8 = 1

// MaxMessageSize is the largest UDC datagram accepted (IPv6 minimum MTU).
const MaxMessageSize = 1280

// UnsecuredSessionID identifies the unsecured session used for announcements.
const UnsecuredSessionID uint16 = 0

// Envelope errors.
var (
	ErrEmptyMessage       = errors.New("empty message")
	ErrMessageTooLarge    = errors.New("message exceeds maximum size")
	ErrUnsupportedVersion = errors.New("unsupported packet version")
)

// MessageFlags is the packet header flag bitmap.
type MessageFlags uint8

const (
	// FlagEncrypted marks a message whose payload is encrypted.
	FlagEncrypted MessageFlags = 1 << 0

	// FlagSourceNodeID marks a header carrying a source node ID.
	FlagSourceNodeID MessageFlags = 1 << 2
)

// Has reports whether all bits of f are set.
func (m MessageFlags) Has(f MessageFlags) bool {
	return m&f == f
}

// ProtocolID identifies the protocol a payload belongs to.
type ProtocolID uint16

const (
	// ProtocolSecureChannel is the secure channel protocol.
	ProtocolSecureChannel ProtocolID = 0x0000

	// ProtocolUserDirectedCommissioning is the UDC protocol.
	ProtocolUserDirectedCommissioning ProtocolID = 0x0003
)

// String returns the protocol name.
func (p ProtocolID) String() string {
	switch p {
	case ProtocolSecureChannel:
		return "SECURE_CHANNEL"
	case ProtocolUserDirectedCommissioning:
		return "UDC"
	default:
		return fmt.Sprintf("PROTOCOL(0x%04x)", uint16(p))
	}
}

// Opcode identifies the message type within a protocol.
type Opcode uint8

// OpcodeIdentificationDeclaration is the UDC announcement opcode.
const OpcodeIdentificationDeclaration Opcode = 0x00

// ExchangeFlags is the payload header flag bitmap.
type ExchangeFlags uint8

const (
	// ExchangeFlagInitiator marks a message sent by the exchange initiator.
	ExchangeFlagInitiator ExchangeFlags = 1 << 0
)

// PacketHeader is the outer header of every UDC datagram.
//
// CBOR encoding:
//
//	{
//	  1: version,         // uint8, must be PacketVersion
//	  2: flags,           // uint8 bitmap
//	  3: sessionId,       // uint16, 0 = unsecured
//	  4: messageCounter,  // uint32
//	  5: sourceNodeId     // uint64, present when FlagSourceNodeID is set
//	}
type PacketHeader struct {
	Version        uint8        `cbor:"1,keyasint"`
	Flags          MessageFlags `cbor:"2,keyasint"`
	SessionID      uint16       `cbor:"3,keyasint"`
	MessageCounter uint32       `cbor:"4,keyasint"`
	SourceNodeID   uint64       `cbor:"5,keyasint,omitempty"`
}

// IsEncrypted reports whether the message claims an encrypted payload.
func (h *PacketHeader) IsEncrypted() bool {
	return h.Flags.Has(FlagEncrypted) || h.SessionID != UnsecuredSessionID
}

// Validate checks header fields that do not depend on the payload.
func (h *PacketHeader) Validate() error {
	if h.Version != PacketVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	return nil
}

// PayloadHeader is the protocol-layer header that follows the packet header.
//
// CBOR encoding:
//
//	{
//	  1: exchangeFlags,  // uint8 bitmap
//	  2: opcode,         // uint8
//	  3: exchangeId,     // uint16
//	  4: protocolId      // uint16
//	}
type PayloadHeader struct {
	ExchangeFlags ExchangeFlags `cbor:"1,keyasint"`
	Opcode        Opcode        `cbor:"2,keyasint"`
	ExchangeID    uint16        `cbor:"3,keyasint"`
	ProtocolID    ProtocolID    `cbor:"4,keyasint"`
}

// DecodePacketHeader decodes the packet header at the start of data and
// returns the remaining bytes.
func DecodePacketHeader(data []byte) (*PacketHeader, []byte, error) {
	if len(data) == 0 {
		return nil, nil, ErrEmptyMessage
	}
	var h PacketHeader
	rest, err := UnmarshalFirst(data, &h)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode packet header: %w", err)
	}
	if err := h.Validate(); err != nil {
		return nil, nil, err
	}
	return &h, rest, nil
}

// DecodePayloadHeader decodes the payload header at the start of data and
// returns the remaining bytes.
func DecodePayloadHeader(data []byte) (*PayloadHeader, []byte, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("failed to decode payload header: %w", ErrEmptyMessage)
	}
	var h PayloadHeader
	rest, err := UnmarshalFirst(data, &h)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode payload header: %w", err)
	}
	return &h, rest, nil
}

// EncodeMessage builds a datagram from both headers and the payload bytes.
func EncodeMessage(ph *PacketHeader, pl *PayloadHeader, payload []byte) ([]byte, error) {
	if err := ph.Validate(); err != nil {
		return nil, err
	}
	phData, err := Marshal(ph)
	if err != nil {
		return nil, fmt.Errorf("failed to encode packet header: %w", err)
	}
	plData, err := Marshal(pl)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload header: %w", err)
	}

	msg := make([]byte, 0, len(phData)+len(plData)+len(payload))
	msg = append(msg, phData...)
	msg = append(msg, plData...)
	msg = append(msg, payload...)
	if len(msg) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(msg))
	}
	return msg, nil
}
