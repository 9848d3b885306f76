package discovery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Browser performs the mDNS lookups.
	Browser Browser

	// Timeout bounds each lookup. Zero means ResolveTimeout.
	Timeout time.Duration

	// OnFound receives every successfully resolved service.
	OnFound func(*CommissionableService)

	// Logger is optional.
	Logger *slog.Logger
}

// Resolver turns announced instance names into commissionable services.
// FindCommissionableNode never blocks; results are delivered to OnFound.
type Resolver struct {
	browser Browser
	timeout time.Duration
	onFound func(*CommissionableService)
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	inFlight map[string]struct{}
}

// NewResolver creates a resolver backed by config.Browser.
func NewResolver(config ResolverConfig) *Resolver {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = ResolveTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		browser:  config.Browser,
		timeout:  timeout,
		onFound:  config.OnFound,
		logger:   config.Logger,
		ctx:      ctx,
		cancel:   cancel,
		inFlight: make(map[string]struct{}),
	}
}

// FindCommissionableNode starts a background lookup for instanceName.
// A second call for a name whose lookup is still running is ignored.
func (r *Resolver) FindCommissionableNode(instanceName string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.debugLog("resolver closed, lookup skipped", "instance", instanceName)
		return
	}
	if _, busy := r.inFlight[instanceName]; busy {
		r.mu.Unlock()
		r.debugLog("lookup already in flight", "instance", instanceName)
		return
	}
	r.inFlight[instanceName] = struct{}{}
	r.wg.Add(1)
	r.mu.Unlock()

	go r.resolve(instanceName)
}

// InFlight returns the number of running lookups.
func (r *Resolver) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inFlight)
}

// Close cancels running lookups and waits for them to finish.
func (r *Resolver) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	return nil
}

func (r *Resolver) resolve(instanceName string) {
	defer r.wg.Done()
	defer func() {
		r.mu.Lock()
		delete(r.inFlight, instanceName)
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	r.debugLog("resolving instance name", "instance", instanceName, "timeout", r.timeout)

	svc, err := r.browser.FindByInstanceName(ctx, instanceName)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			r.warnLog("instance name not resolved before timeout", "instance", instanceName)
		case errors.Is(err, context.Canceled), errors.Is(err, ErrResolverClosed):
			r.debugLog("lookup cancelled", "instance", instanceName)
		default:
			r.warnLog("instance name lookup failed", "instance", instanceName, "error", err)
		}
		return
	}

	r.debugLog("instance name resolved",
		"instance", instanceName,
		"host", svc.Host,
		"port", svc.Port)

	if r.onFound != nil {
		r.onFound(svc)
	}
}

func (r *Resolver) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Resolver) warnLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
