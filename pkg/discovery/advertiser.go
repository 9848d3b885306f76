package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser publishes commissionable services so a commissioner can
// resolve an announced instance name.
type Advertiser interface {
	// AdvertiseCommissionable starts (or replaces) the advertisement for
	// info.InstanceName.
	AdvertiseCommissionable(ctx context.Context, info *CommissionableInfo) error

	// StopCommissionable withdraws the advertisement for instanceName.
	StopCommissionable(instanceName string) error

	// StopAll withdraws every advertisement.
	StopAll()
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{TTL: DefaultTTL}
}

// MDNSAdvertiser implements Advertiser using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu      sync.Mutex
	servers map[string]*zeroconf.Server // keyed by instance name
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{
		config:  config,
		servers: make(map[string]*zeroconf.Server),
	}
}

// AdvertiseCommissionable registers a _mashc._udp service for info.
func (a *MDNSAdvertiser) AdvertiseCommissionable(ctx context.Context, info *CommissionableInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if server, exists := a.servers[info.InstanceName]; exists {
		server.Shutdown()
		delete(a.servers, info.InstanceName)
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.InstanceName,
		ServiceTypeCommissionable,
		Domain,
		port,
		TXTRecordsToStrings(EncodeCommissionableTXT(info)),
		a.interfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register commissionable service: %w", err)
	}

	a.servers[info.InstanceName] = server
	return nil
}

// StopCommissionable withdraws one advertisement.
func (a *MDNSAdvertiser) StopCommissionable(instanceName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[instanceName]
	if !exists {
		return ErrNotFound
	}
	server.Shutdown()
	delete(a.servers, instanceName)
	return nil
}

// StopAll withdraws every advertisement.
func (a *MDNSAdvertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, server := range a.servers {
		server.Shutdown()
		delete(a.servers, name)
	}
}

// interfaces returns the configured interface, or nil for all interfaces.
func (a *MDNSAdvertiser) interfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

var _ Advertiser = (*MDNSAdvertiser)(nil)
