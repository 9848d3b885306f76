// Package wire defines the CBOR envelope format for MASH user-directed
// commissioning (UDC) messages.
//
// A UDC datagram carries two CBOR maps followed by raw payload bytes:
//
//	PacketHeader  {1: version, 2: flags, 3: sessionId, 4: messageCounter, 5: sourceNodeId}
//	PayloadHeader {1: exchangeFlags, 2: opcode, 3: exchangeId, 4: protocolId}
//	payload       opcode-specific bytes (the instance name for IdentificationDeclaration)
//
// # Decode and Consume
//
// Each header decoder returns the bytes that follow the header, so a
// receiver peels the envelope one layer at a time:
//
//	ph, rest, err := wire.DecodePacketHeader(msg)
//	pl, payload, err := wire.DecodePayloadHeader(rest)
//
// Decoders never panic on malformed input. Every failure is reported as an
// error so callers can drop the datagram.
//
// # Encryption
//
// UDC announcements are sent on the unsecured session. A header with the
// encrypted flag set, or with a non-zero session ID, reports IsEncrypted.
package wire
