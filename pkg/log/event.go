package log

import (
	"time"

	"github.com/mash-protocol/mash-udc/pkg/wire"
)

// Event is a protocol event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// EventID correlates events produced while handling one datagram (UUID).
	EventID string `cbor:"2,keyasint"`

	Direction Direction `cbor:"3,keyasint"`
	Layer     Layer     `cbor:"4,keyasint"`
	Category  Category  `cbor:"5,keyasint"`

	// RemoteAddr is the peer address (IP:port), when known.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// InstanceName is the announcer's instance name, once extracted.
	InstanceName string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (at most one is set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the datagram layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the envelope decoding layer.
	LayerWire Layer = 1
	// LayerService is the UDC client table and callbacks.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	CategoryMessage Category = 0
	CategoryState   Category = 2
	CategoryError   Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures a raw datagram at the transport layer.
type FrameEvent struct {
	// Size is the datagram size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw datagram (may be truncated).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MaxFrameCapture is the number of datagram bytes kept in a FrameEvent.
const MaxFrameCapture = 256

// NewFrameEvent captures data, truncating it to MaxFrameCapture bytes.
func NewFrameEvent(data []byte) *FrameEvent {
	fe := &FrameEvent{Size: len(data)}
	n := len(data)
	if n > MaxFrameCapture {
		n = MaxFrameCapture
		fe.Truncated = true
	}
	fe.Data = append([]byte(nil), data[:n]...)
	return fe
}

// MessageEvent captures the decoded envelope headers at the wire layer.
type MessageEvent struct {
	MessageCounter uint32            `cbor:"1,keyasint"`
	SessionID      uint16            `cbor:"2,keyasint,omitempty"`
	Flags          wire.MessageFlags `cbor:"3,keyasint,omitempty"`
	ProtocolID     wire.ProtocolID   `cbor:"4,keyasint"`
	Opcode         wire.Opcode       `cbor:"5,keyasint"`
	ExchangeID     uint16            `cbor:"6,keyasint"`

	// PayloadSize is the number of bytes after both headers.
	PayloadSize int `cbor:"7,keyasint"`
}

// StateChangeEvent captures a client processing state change.
type StateChangeEvent struct {
	// OldState is the previous state (empty for a new client).
	OldState string `cbor:"1,keyasint,omitempty"`

	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures a drop or failure at any layer.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
