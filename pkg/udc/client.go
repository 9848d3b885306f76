package udc

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/mash-protocol/mash-udc/pkg/transport"
	"github.com/mash-protocol/mash-udc/pkg/wire"
)

// EncodeIdentificationDeclaration builds an unencrypted announcement
// carrying instanceName.
func EncodeIdentificationDeclaration(instanceName string) ([]byte, error) {
	if err := ValidateInstanceName(instanceName); err != nil {
		return nil, err
	}

	var rnd [6]byte
	if _, err := rand.Read(rnd[:]); err != nil {
		return nil, fmt.Errorf("failed to generate counters: %w", err)
	}

	ph := &wire.PacketHeader{
		Version:        wire.PacketVersion,
		SessionID:      wire.UnsecuredSessionID,
		MessageCounter: binary.BigEndian.Uint32(rnd[:4]),
	}
	pl := &wire.PayloadHeader{
		ExchangeFlags: wire.ExchangeFlagInitiator,
		Opcode:        wire.OpcodeIdentificationDeclaration,
		ExchangeID:    binary.BigEndian.Uint16(rnd[4:]),
		ProtocolID:    wire.ProtocolUserDirectedCommissioning,
	}
	return wire.EncodeMessage(ph, pl, []byte(instanceName))
}

// Client announces a device to a commissioner.
type Client struct {
	sender transport.Sender
}

// NewClient creates a client that sends through sender.
func NewClient(sender transport.Sender) *Client {
	return &Client{sender: sender}
}

// SendIdentificationDeclaration sends one announcement to addr. It does not
// retry; callers repeat the announcement if they need to.
func (c *Client) SendIdentificationDeclaration(ctx context.Context, addr, instanceName string) error {
	msg, err := EncodeIdentificationDeclaration(instanceName)
	if err != nil {
		return err
	}
	if err := c.sender.Send(ctx, addr, msg); err != nil {
		return fmt.Errorf("failed to send identification declaration: %w", err)
	}
	return nil
}
