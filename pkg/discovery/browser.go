package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Browser provides mDNS browsing for commissionable devices.
type Browser interface {
	// BrowseCommissionable streams commissionable services as they appear.
	// The channel is closed when ctx is cancelled or browsing stops.
	BrowseCommissionable(ctx context.Context) (<-chan *CommissionableService, error)

	// FindByInstanceName browses until a service with the given instance
	// name appears, ctx is done, or the browse ends.
	FindByInstanceName(ctx context.Context, instanceName string) (*CommissionableService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{}
}

// MDNSBrowser implements Browser using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	stopped bool
	cancels map[int]context.CancelFunc
	nextID  int
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	return &MDNSBrowser{
		config:  config,
		cancels: make(map[int]context.CancelFunc),
	}
}

// BrowseCommissionable searches for devices in commissioning mode.
// Entries are aggregated by instance name: addresses seen on several
// interfaces are merged and each instance is emitted once.
func (b *MDNSBrowser) BrowseCommissionable(ctx context.Context) (<-chan *CommissionableService, error) {
	ctx, release, err := b.track(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan *CommissionableService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)
		defer release()

		gone := (<-chan *zeroconf.ServiceEntry)(removed)
		services := make(serviceSet)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToCommissionable(entry)
				if svc == nil {
					continue
				}
				emit, isNew := services.add(svc)
				if !isNew {
					continue
				}
				select {
				case out <- emit:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-gone:
				if !ok {
					gone = nil
					continue
				}
				delete(services, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeCommissionable, Domain, entries, removed, b.clientOptions()...)
	}()

	return out, nil
}

// FindByInstanceName searches for one commissionable device by instance name.
func (b *MDNSBrowser) FindByInstanceName(ctx context.Context, instanceName string) (*CommissionableService, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, err := b.BrowseCommissionable(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, ErrNotFound
			}
			if svc.InstanceName == instanceName {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop cancels every active browse. Later browse calls fail with ErrResolverClosed.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	for id, cancel := range b.cancels {
		cancel()
		delete(b.cancels, id)
	}
}

// track derives a cancellable context registered for Stop.
func (b *MDNSBrowser) track(ctx context.Context) (context.Context, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return nil, nil, ErrResolverClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	id := b.nextID
	b.nextID++
	b.cancels[id] = cancel

	release := func() {
		cancel()
		b.mu.Lock()
		delete(b.cancels, id)
		b.mu.Unlock()
	}
	return ctx, release, nil
}

// clientOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) clientOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

// entryToCommissionable converts a zeroconf entry; nil when the TXT
// records are not a valid commissionable record.
func entryToCommissionable(entry *zeroconf.ServiceEntry) *CommissionableService {
	txt := StringsToTXTRecords(entry.Text)
	info, err := DecodeCommissionableTXT(txt)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &CommissionableService{
		InstanceName:  entry.Instance,
		Host:          entry.HostName,
		Port:          uint16(entry.Port),
		Addresses:     addrs,
		Discriminator: info.Discriminator,
		Categories:    info.Categories,
		Serial:        info.Serial,
		Brand:         info.Brand,
		Model:         info.Model,
		DeviceName:    info.DeviceName,
	}
}

// serviceSet aggregates browse results by instance name. A service handed
// to a receiver is never modified afterwards: merges replace the stored
// record with a fresh copy.
type serviceSet map[string]*CommissionableService

// add records svc. For a new instance it returns a copy for the receiver.
func (s serviceSet) add(svc *CommissionableService) (*CommissionableService, bool) {
	if existing, found := s[svc.InstanceName]; found {
		merged := *existing
		merged.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
		s[svc.InstanceName] = &merged
		return nil, false
	}
	s[svc.InstanceName] = svc
	emit := *svc
	emit.Addresses = append([]string(nil), svc.Addresses...)
	emit.Categories = append([]DeviceCategory(nil), svc.Categories...)
	return &emit, true
}

// mergeAddresses returns a new slice holding existing followed by the
// addresses of added not already present.
func mergeAddresses(existing, added []string) []string {
	merged := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]bool, len(existing)+len(added))
	for _, addr := range existing {
		if !seen[addr] {
			merged = append(merged, addr)
			seen[addr] = true
		}
	}
	for _, addr := range added {
		if !seen[addr] {
			merged = append(merged, addr)
			seen[addr] = true
		}
	}
	return merged
}

var _ Browser = (*MDNSBrowser)(nil)
