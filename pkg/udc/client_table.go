package udc

import (
	"sort"
	"sync"
	"time"
)

// TableConfig configures a ClientTable.
type TableConfig struct {
	// MaxClients bounds the number of tracked clients. Default: 8.
	MaxClients int

	// ClientTimeout is how long a record stays live after its last
	// activity. Default: 1 minute.
	ClientTimeout time.Duration

	// EvictOldest makes a full table evict its least recently active
	// record instead of failing with ErrTableFull.
	EvictOldest bool

	// Now overrides the clock. Used in tests.
	Now func() time.Time
}

// ClientTable is a bounded set of UDC client records keyed by instance name.
// Expired records are treated as absent by every lookup.
type ClientTable struct {
	maxClients  int
	timeout     time.Duration
	evictOldest bool
	now         func() time.Time

	mu      sync.Mutex
	clients map[string]*ClientState
}

// NewClientTable creates an empty table.
func NewClientTable(cfg TableConfig) *ClientTable {
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultMaxClients
	}
	if cfg.ClientTimeout <= 0 {
		cfg.ClientTimeout = DefaultClientTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ClientTable{
		maxClients:  cfg.MaxClients,
		timeout:     cfg.ClientTimeout,
		evictOldest: cfg.EvictOldest,
		now:         cfg.Now,
		clients:     make(map[string]*ClientState, cfg.MaxClients),
	}
}

// Find returns the live record for name.
func (t *ClientTable) Find(name string) (ClientState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.lookup(name, t.now())
	if c == nil {
		return ClientState{}, false
	}
	return *c, true
}

// CreateIfAbsent returns the live record for name, creating it in
// StateDiscoveringNode when there is none. created reports whether a new
// record was inserted. Find and create happen under one lock, so concurrent
// calls for the same name create at most one record.
func (t *ClientTable) CreateIfAbsent(name, peer string) (state ClientState, created bool, err error) {
	if err := ValidateInstanceName(name); err != nil {
		return ClientState{}, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if c := t.lookup(name, now); c != nil {
		return *c, false, nil
	}

	if len(t.clients) >= t.maxClients {
		t.purgeExpired(now)
	}
	if len(t.clients) >= t.maxClients {
		if !t.evictOldest {
			return ClientState{}, false, ErrTableFull
		}
		t.evictLeastRecent()
	}

	c := &ClientState{
		InstanceName:   name,
		PeerAddress:    peer,
		State:          StateDiscoveringNode,
		CreatedAt:      now,
		LastActive:     now,
		ExpirationTime: now.Add(t.timeout),
	}
	t.clients[name] = c
	return *c, true, nil
}

// MarkActive refreshes the record's expiration. It reports false when no
// live record exists for name.
func (t *ClientTable) MarkActive(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	c := t.lookup(name, now)
	if c == nil {
		return false
	}
	t.touch(c, now)
	return true
}

// SetState sets the record's state unconditionally and returns the previous one.
func (t *ClientTable) SetState(name string, state ProcessingState) (old ProcessingState, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.lookup(name, t.now())
	if c == nil {
		return 0, false
	}
	old = c.State
	c.State = state
	return old, true
}

// CompareAndSetState moves the record from one state to another. It fails
// when the record is absent or not in state from.
func (t *ClientTable) CompareAndSetState(name string, from, to ProcessingState) (ClientState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.lookup(name, t.now())
	if c == nil || c.State != from {
		return ClientState{}, false
	}
	c.State = to
	return *c, true
}

// Remove deletes the record for name.
func (t *ClientTable) Remove(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.clients[name]; !ok {
		return false
	}
	delete(t.clients, name)
	return true
}

// PurgeExpired removes aged-out records and returns how many were removed.
func (t *ClientTable) PurgeExpired() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.purgeExpired(t.now())
}

// Len returns the number of live records.
func (t *ClientTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	n := 0
	for _, c := range t.clients {
		if !c.IsExpired(now) {
			n++
		}
	}
	return n
}

// Snapshot returns copies of all live records sorted by instance name.
func (t *ClientTable) Snapshot() []ClientState {
	t.mu.Lock()
	now := t.now()
	out := make([]ClientState, 0, len(t.clients))
	for _, c := range t.clients {
		if !c.IsExpired(now) {
			out = append(out, *c)
		}
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].InstanceName < out[j].InstanceName })
	return out
}

// lookup returns the live record for name. Caller holds t.mu.
func (t *ClientTable) lookup(name string, now time.Time) *ClientState {
	c, ok := t.clients[name]
	if !ok || c.IsExpired(now) {
		return nil
	}
	return c
}

func (t *ClientTable) touch(c *ClientState, now time.Time) {
	c.LastActive = now
	c.ExpirationTime = now.Add(t.timeout)
}

func (t *ClientTable) purgeExpired(now time.Time) int {
	removed := 0
	for name, c := range t.clients {
		if c.IsExpired(now) {
			delete(t.clients, name)
			removed++
		}
	}
	return removed
}

func (t *ClientTable) evictLeastRecent() {
	var oldest *ClientState
	for _, c := range t.clients {
		if oldest == nil || c.LastActive.Before(oldest.LastActive) {
			oldest = c
		}
	}
	if oldest != nil {
		delete(t.clients, oldest.InstanceName)
	}
}
