package udc

import (
	"errors"
	"fmt"
	"time"

	"github.com/mash-protocol/mash-udc/pkg/discovery"
)

// MaxInstanceNameLen is the maximum stored instance name length in bytes.
// Longer announcements are truncated.
const MaxInstanceNameLen = 16

const (
	// DefaultMaxClients is the default ClientTable capacity.
	DefaultMaxClients = 8

	// DefaultClientTimeout is how long a record stays live after its last activity.
	DefaultClientTimeout = time.Minute
)

// UDC errors.
var (
	ErrTableFull           = errors.New("client table full")
	ErrInvalidInstanceName = errors.New("invalid instance name")
	ErrInvalidState        = errors.New("invalid processing state")
)

// ProcessingState is the UDC processing state of a client.
type ProcessingState uint8

const (
	StateNotInitialized ProcessingState = iota
	StateDiscoveringNode
	StatePromptingUser
	StateUserDeclined
	StateObtainingOnboardingPayload
	StateCommissioningNode
	StateCommissioningFailed
)

// String returns the state name.
func (s ProcessingState) String() string {
	switch s {
	case StateNotInitialized:
		return "NOT_INITIALIZED"
	case StateDiscoveringNode:
		return "DISCOVERING_NODE"
	case StatePromptingUser:
		return "PROMPTING_USER"
	case StateUserDeclined:
		return "USER_DECLINED"
	case StateObtainingOnboardingPayload:
		return "OBTAINING_ONBOARDING_PAYLOAD"
	case StateCommissioningNode:
		return "COMMISSIONING_NODE"
	case StateCommissioningFailed:
		return "COMMISSIONING_FAILED"
	default:
		return fmt.Sprintf("STATE(%d)", uint8(s))
	}
}

// IsValid reports whether s is a known state.
func (s ProcessingState) IsValid() bool {
	return s <= StateCommissioningFailed
}

// ParseProcessingState parses a state name as returned by String.
func ParseProcessingState(name string) (ProcessingState, error) {
	for s := StateNotInitialized; s <= StateCommissioningFailed; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidState, name)
}

// ClientState is a snapshot of one tracked client.
// Values returned by ClientTable are copies; mutating them has no effect.
type ClientState struct {
	InstanceName   string
	PeerAddress    string
	State          ProcessingState
	CreatedAt      time.Time
	LastActive     time.Time
	ExpirationTime time.Time
}

// IsExpired reports whether the record has aged out at now.
func (c ClientState) IsExpired(now time.Time) bool {
	return now.After(c.ExpirationTime)
}

// InstanceNameResolver locates a device by its announced instance name.
// FindCommissionableNode must not block; the result is delivered later via
// Server.OnCommissionableNodeFound.
type InstanceNameResolver interface {
	FindCommissionableNode(instanceName string)
}

// UserConfirmationProvider asks an operator whether a resolved device may
// be commissioned.
type UserConfirmationProvider interface {
	OnUserDirectedCommissioningRequest(node *discovery.CommissionableService)
}

// Compile-time check: *discovery.Resolver implements InstanceNameResolver.
var _ InstanceNameResolver = (*discovery.Resolver)(nil)

// ValidateInstanceName checks a name for use as a table key.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidInstanceName)
	}
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: exceeds %d bytes", ErrInvalidInstanceName, MaxInstanceNameLen)
	}
	return nil
}
