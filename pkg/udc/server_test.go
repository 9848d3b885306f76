package udc_test

import (
	"bytes"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/mash-protocol/mash-udc/pkg/discovery"
	"github.com/mash-protocol/mash-udc/pkg/log"
	"github.com/mash-protocol/mash-udc/pkg/udc"
	"github.com/mash-protocol/mash-udc/pkg/udc/mocks"
	"github.com/mash-protocol/mash-udc/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPeer = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 10), Port: 5540}

// eventRecorder collects protocol events.
type eventRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *eventRecorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) byCategory(c log.Category) []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []log.Event
	for _, e := range r.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

type testFixture struct {
	server   *udc.Server
	resolver *mocks.MockInstanceNameResolver
	confirm  *mocks.MockUserConfirmationProvider
	events   *eventRecorder
	now      time.Time
	mu       sync.Mutex
}

func (f *testFixture) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *testFixture) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newFixture(t *testing.T, maxClients int) *testFixture {
	t.Helper()
	f := &testFixture{
		resolver: mocks.NewMockInstanceNameResolver(t),
		confirm:  mocks.NewMockUserConfirmationProvider(t),
		events:   &eventRecorder{},
		now:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.server = udc.NewServer(udc.ServerConfig{
		Table: udc.NewClientTable(udc.TableConfig{
			MaxClients:    maxClients,
			ClientTimeout: time.Minute,
			Now:           f.Now,
		}),
		Resolver:       f.resolver,
		Confirmation:   f.confirm,
		ProtocolLogger: f.events,
	})
	return f
}

func announcement(t *testing.T, name string) []byte {
	t.Helper()
	msg, err := udc.EncodeIdentificationDeclaration(name)
	require.NoError(t, err)
	return msg
}

// rawAnnouncement builds an announcement with arbitrary headers and payload.
func rawAnnouncement(t *testing.T, ph *wire.PacketHeader, pl *wire.PayloadHeader, payload []byte) []byte {
	t.Helper()
	if ph == nil {
		ph = &wire.PacketHeader{Version: wire.PacketVersion, MessageCounter: 1}
	}
	if pl == nil {
		pl = &wire.PayloadHeader{
			ExchangeFlags: wire.ExchangeFlagInitiator,
			Opcode:        wire.OpcodeIdentificationDeclaration,
			ExchangeID:    1,
			ProtocolID:    wire.ProtocolUserDirectedCommissioning,
		}
	}
	msg, err := wire.EncodeMessage(ph, pl, payload)
	require.NoError(t, err)
	return msg
}

func TestAnnouncementCreatesClientAndResolves(t *testing.T) {
	f := newFixture(t, 8)
	f.resolver.EXPECT().FindCommissionableNode("device-42").Return().Once()

	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))

	rec, ok := f.server.Table().Find("device-42")
	require.True(t, ok)
	assert.Equal(t, udc.StateDiscoveringNode, rec.State)
	assert.Equal(t, testPeer.String(), rec.PeerAddress)
	assert.Equal(t, f.Now(), rec.LastActive)
	assert.Equal(t, 1, f.server.Table().Len())

	states := f.events.byCategory(log.CategoryState)
	require.Len(t, states, 1)
	assert.Equal(t, "device-42", states[0].InstanceName)
	assert.Equal(t, "DISCOVERING_NODE", states[0].StateChange.NewState)
	assert.Len(t, f.events.byCategory(log.CategoryMessage), 1)
}

func TestRepeatedAnnouncementRefreshesOnly(t *testing.T) {
	f := newFixture(t, 8)
	f.resolver.EXPECT().FindCommissionableNode("device-42").Return().Once()

	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))
	f.Advance(30 * time.Second)
	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))
	f.Advance(45 * time.Second)

	rec, ok := f.server.Table().Find("device-42")
	require.True(t, ok, "refreshed record should outlive the original expiration")
	assert.Equal(t, f.Now().Add(-45*time.Second), rec.LastActive)
	assert.Equal(t, 1, f.server.Table().Len())
}

func TestResolvedNodePromptsUserOnce(t *testing.T) {
	f := newFixture(t, 8)
	f.resolver.EXPECT().FindCommissionableNode("device-42").Return().Once()

	node := &discovery.CommissionableService{InstanceName: "device-42", Port: 5550}
	f.confirm.EXPECT().OnUserDirectedCommissioningRequest(node).Return().Once()

	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))
	f.server.OnCommissionableNodeFound(node)

	rec, _ := f.server.Table().Find("device-42")
	assert.Equal(t, udc.StatePromptingUser, rec.State)

	// A duplicate callback must not prompt again.
	f.server.OnCommissionableNodeFound(node)
	rec, _ = f.server.Table().Find("device-42")
	assert.Equal(t, udc.StatePromptingUser, rec.State)
}

func TestResolvedNodeIgnoredOutsideDiscovering(t *testing.T) {
	f := newFixture(t, 8)

	// Unknown instance.
	f.server.OnCommissionableNodeFound(&discovery.CommissionableService{InstanceName: "ghost"})
	assert.Equal(t, 0, f.server.Table().Len())

	// Declined instance.
	f.server.SetClientProcessingState("device-42", udc.StateUserDeclined)
	f.server.OnCommissionableNodeFound(&discovery.CommissionableService{InstanceName: "device-42"})
	rec, _ := f.server.Table().Find("device-42")
	assert.Equal(t, udc.StateUserDeclined, rec.State)

	// Nil node.
	f.server.OnCommissionableNodeFound(nil)
}

func TestEncryptedAnnouncementDropped(t *testing.T) {
	f := newFixture(t, 8)

	f.server.OnMessageReceived(testPeer, rawAnnouncement(t,
		&wire.PacketHeader{Version: wire.PacketVersion, Flags: wire.FlagEncrypted},
		nil, []byte("device-42")))
	f.server.OnMessageReceived(testPeer, rawAnnouncement(t,
		&wire.PacketHeader{Version: wire.PacketVersion, SessionID: 7},
		nil, []byte("device-42")))

	assert.Equal(t, 0, f.server.Table().Len())
	assert.Len(t, f.events.byCategory(log.CategoryError), 2)
}

func TestMalformedInputLeavesTableUnchanged(t *testing.T) {
	f := newFixture(t, 8)

	valid := announcement(t, "device-42")
	phOnly, err := wire.Marshal(&wire.PacketHeader{Version: wire.PacketVersion})
	require.NoError(t, err)

	inputs := map[string][]byte{
		"nil":             nil,
		"empty":           {},
		"garbage":         {0xff, 0x00, 0x13, 0x37},
		"truncated":       valid[:len(valid)/2],
		"header only":     phOnly,
		"oversized":       append(append([]byte{}, valid...), bytes.Repeat([]byte{'x'}, wire.MaxMessageSize)...),
		"empty name":      rawAnnouncement(t, nil, nil, nil),
		"leading nul":     rawAnnouncement(t, nil, nil, []byte("\x00device")),
		"wrong protocol":  rawAnnouncement(t, nil, &wire.PayloadHeader{ProtocolID: wire.ProtocolSecureChannel}, []byte("device-42")),
		"wrong opcode":    rawAnnouncement(t, nil, &wire.PayloadHeader{ProtocolID: wire.ProtocolUserDirectedCommissioning, Opcode: 0x7f}, []byte("device-42")),
		"bad version":     append([]byte{0xa1, 0x01, 0x09}, valid...),
		"deep nesting":    bytes.Repeat([]byte{0x81}, 64),
		"huge array hint": {0x9b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() { f.server.OnMessageReceived(testPeer, input) })
			assert.Equal(t, 0, f.server.Table().Len())
		})
	}
}

func TestInstanceNameTruncation(t *testing.T) {
	f := newFixture(t, 8)

	payload := []byte("living-room-television-0042")
	want := string(payload[:udc.MaxInstanceNameLen])
	f.resolver.EXPECT().FindCommissionableNode(want).Return().Once()

	f.server.OnMessageReceived(testPeer, rawAnnouncement(t, nil, nil, payload))

	snap := f.server.Table().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, want, snap[0].InstanceName)
	assert.Len(t, snap[0].InstanceName, udc.MaxInstanceNameLen)
}

func TestNulTerminatedInstanceName(t *testing.T) {
	f := newFixture(t, 8)
	f.resolver.EXPECT().FindCommissionableNode("dev").Return().Once()

	f.server.OnMessageReceived(testPeer, rawAnnouncement(t, nil, nil, []byte("dev\x00garbage")))

	_, ok := f.server.Table().Find("dev")
	assert.True(t, ok)
}

func TestAnnouncementWithoutResolver(t *testing.T) {
	f := newFixture(t, 8)
	f.server.SetInstanceNameResolver(nil)

	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))

	rec, ok := f.server.Table().Find("device-42")
	require.True(t, ok)
	assert.Equal(t, udc.StateDiscoveringNode, rec.State)
}

func TestResolvedNodeWithoutConfirmationProvider(t *testing.T) {
	f := newFixture(t, 8)
	f.server.SetUserConfirmationProvider(nil)
	f.resolver.EXPECT().FindCommissionableNode("device-42").Return().Once()

	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))
	f.server.OnCommissionableNodeFound(&discovery.CommissionableService{InstanceName: "device-42"})

	rec, _ := f.server.Table().Find("device-42")
	assert.Equal(t, udc.StatePromptingUser, rec.State)
}

func TestTableFullDropsAnnouncement(t *testing.T) {
	f := newFixture(t, 2)
	f.resolver.EXPECT().FindCommissionableNode("a").Return().Once()
	f.resolver.EXPECT().FindCommissionableNode("b").Return().Once()

	f.server.OnMessageReceived(testPeer, announcement(t, "a"))
	f.server.OnMessageReceived(testPeer, announcement(t, "b"))
	f.server.OnMessageReceived(testPeer, announcement(t, "c"))

	assert.Equal(t, 2, f.server.Table().Len())
	_, ok := f.server.Table().Find("c")
	assert.False(t, ok)

	errs := f.events.byCategory(log.CategoryError)
	require.Len(t, errs, 1)
	assert.Equal(t, "c", errs[0].InstanceName)

	// The table stays usable once a slot frees up.
	f.Advance(2 * time.Minute)
	f.resolver.EXPECT().FindCommissionableNode("c").Return().Once()
	f.server.OnMessageReceived(testPeer, announcement(t, "c"))
	_, ok = f.server.Table().Find("c")
	assert.True(t, ok)
}

func TestExpiredClientIsResolvedAgain(t *testing.T) {
	f := newFixture(t, 8)
	f.resolver.EXPECT().FindCommissionableNode("device-42").Return().Twice()

	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))
	f.Advance(2 * time.Minute)
	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))

	assert.Equal(t, 1, f.server.Table().Len())
}

func TestSetClientProcessingState(t *testing.T) {
	f := newFixture(t, 8)

	f.server.SetClientProcessingState("device-42", udc.StateObtainingOnboardingPayload)
	rec, ok := f.server.Table().Find("device-42")
	require.True(t, ok, "absent client should be created")
	assert.Equal(t, udc.StateObtainingOnboardingPayload, rec.State)

	f.Advance(50 * time.Second)
	f.server.SetClientProcessingState("device-42", udc.StateCommissioningNode)
	rec, _ = f.server.Table().Find("device-42")
	assert.Equal(t, udc.StateCommissioningNode, rec.State)
	assert.Equal(t, f.Now(), rec.LastActive)

	// Invalid input is ignored.
	f.server.SetClientProcessingState("device-42", udc.ProcessingState(99))
	f.server.SetClientProcessingState("", udc.StateUserDeclined)
	rec, _ = f.server.Table().Find("device-42")
	assert.Equal(t, udc.StateCommissioningNode, rec.State)
	assert.Equal(t, 1, f.server.Table().Len())
}

func TestSetClientProcessingStateTableFull(t *testing.T) {
	f := newFixture(t, 1)
	f.server.SetClientProcessingState("a", udc.StateUserDeclined)
	f.server.SetClientProcessingState("b", udc.StateUserDeclined)

	_, ok := f.server.Table().Find("b")
	assert.False(t, ok)
	assert.Len(t, f.events.byCategory(log.CategoryError), 1)
}

func TestUniquenessAcrossAnnouncements(t *testing.T) {
	f := newFixture(t, 8)
	names := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for _, name := range names {
		f.resolver.EXPECT().FindCommissionableNode(name).Return().Once()
	}

	for i := 0; i < 200; i++ {
		name := names[(i*7+i/3)%len(names)]
		f.server.OnMessageReceived(testPeer, announcement(t, name))
		assert.LessOrEqual(t, f.server.Table().Len(), len(names))
	}
	assert.Equal(t, len(names), f.server.Table().Len())
}

func TestConcurrentAnnouncementsAndCallbacks(t *testing.T) {
	f := newFixture(t, 8)
	f.resolver.EXPECT().FindCommissionableNode(mock.Anything).Return().Times(4)
	f.confirm.EXPECT().OnUserDirectedCommissioningRequest(mock.Anything).Return().Times(4)

	msgs := make([][]byte, 4)
	for i := range msgs {
		msgs[i] = announcement(t, fmt.Sprintf("dev-%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.server.OnMessageReceived(testPeer, msgs[i%4])
		}(i)
	}
	wg.Wait()

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.server.OnCommissionableNodeFound(&discovery.CommissionableService{InstanceName: fmt.Sprintf("dev-%d", i%4)})
		}(i)
	}
	wg.Wait()

	for _, rec := range f.server.Table().Snapshot() {
		assert.Equal(t, udc.StatePromptingUser, rec.State, rec.InstanceName)
	}
}

func TestCollaboratorsCanReenterServer(t *testing.T) {
	f := newFixture(t, 8)
	node := &discovery.CommissionableService{InstanceName: "device-42"}

	// Resolution completes synchronously from inside the resolver call.
	f.resolver.EXPECT().FindCommissionableNode("device-42").Run(func(name string) {
		f.server.OnCommissionableNodeFound(node)
	}).Return().Once()
	// The operator approves from inside the prompt.
	f.confirm.EXPECT().OnUserDirectedCommissioningRequest(node).Run(func(n *discovery.CommissionableService) {
		f.server.SetClientProcessingState(n.InstanceName, udc.StateObtainingOnboardingPayload)
	}).Return().Once()

	f.server.OnMessageReceived(testPeer, announcement(t, "device-42"))

	rec, _ := f.server.Table().Find("device-42")
	assert.Equal(t, udc.StateObtainingOnboardingPayload, rec.State)
}
