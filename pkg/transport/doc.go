// Package transport carries UDC datagrams over UDP.
//
// Announcements are single unsolicited datagrams. There is no connection,
// no framing and no retransmission: a lost datagram is simply lost and the
// announcing device is expected to repeat it.
//
//	┌────────────────────────────────┐
//	│   Payload (instance name)      │
//	├────────────────────────────────┤
//	│   Payload header (CBOR)        │
//	├────────────────────────────────┤
//	│   Packet header (CBOR)         │
//	├────────────────────────────────┤
//	│           UDP                  │
//	└────────────────────────────────┘
//
// Server receives datagrams and hands each one to OnMessage. UDPSender
// sends one datagram per call.
package transport
