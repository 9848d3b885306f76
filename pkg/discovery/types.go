package discovery

import (
	"errors"
	"fmt"
	"time"
)

const (
	// ServiceTypeCommissionable is the service type for devices in commissioning mode.
	ServiceTypeCommissionable = "_mashc._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default UDC port.
	DefaultPort = 5550
)

const (
	TXTKeyDiscriminator = "D"      // Discriminator (0-4095)
	TXTKeyCategories    = "cat"    // Device categories (comma-separated)
	TXTKeySerial        = "serial" // Serial number
	TXTKeyBrand         = "brand"  // Vendor/brand name
	TXTKeyModel         = "model"  // Model name
	TXTKeyDeviceName    = "DN"     // Device name (user-configurable)
)

const (
	// ResolveTimeout bounds a single instance-name lookup.
	ResolveTimeout = 10 * time.Second

	// DefaultTTL is the DNS record TTL used when advertising.
	DefaultTTL = 120 * time.Second
)

const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxDiscriminator is the maximum discriminator value (12 bits).
	MaxDiscriminator = 4095
)

// Discovery errors.
var (
	ErrInvalidDiscriminator = errors.New("discriminator out of range")
	ErrInvalidTXTRecord     = errors.New("invalid TXT record format")
	ErrMissingRequired      = errors.New("missing required field")
	ErrInvalidInstanceName  = errors.New("invalid instance name")
	ErrNotFound             = errors.New("service not found")
	ErrResolverClosed       = errors.New("resolver closed")
)

// DeviceCategory represents a device category.
type DeviceCategory uint8

const (
	CategoryGCPH      DeviceCategory = 1
	CategoryEMS       DeviceCategory = 2
	CategoryEMobility DeviceCategory = 3
	CategoryHVAC      DeviceCategory = 4
	CategoryInverter  DeviceCategory = 5
	CategoryAppliance DeviceCategory = 6
	CategoryMetering  DeviceCategory = 7
)

// String returns the category name.
func (c DeviceCategory) String() string {
	switch c {
	case CategoryGCPH:
		return "GCPH"
	case CategoryEMS:
		return "EMS"
	case CategoryEMobility:
		return "E-MOBILITY"
	case CategoryHVAC:
		return "HVAC"
	case CategoryInverter:
		return "INVERTER"
	case CategoryAppliance:
		return "APPLIANCE"
	case CategoryMetering:
		return "METERING"
	default:
		return "UNKNOWN"
	}
}

// CommissionableService is a commissionable device found via mDNS.
// It is the resolved node information handed to the UDC server.
type CommissionableService struct {
	// InstanceName is the mDNS instance name announced over UDC.
	InstanceName string

	// Host is the hostname (e.g., "evse-001.local.").
	Host string

	// Port is the service port.
	Port uint16

	// Addresses contains resolved IP addresses, IPv4 first.
	Addresses []string

	// Discriminator is the device discriminator (from TXT "D").
	Discriminator uint16

	// Categories contains device categories (from TXT "cat").
	Categories []DeviceCategory

	Serial     string
	Brand      string
	Model      string
	DeviceName string
}

// DisplayName returns the device name if set, otherwise brand and model,
// otherwise the instance name.
func (s *CommissionableService) DisplayName() string {
	switch {
	case s.DeviceName != "":
		return s.DeviceName
	case s.Brand != "" || s.Model != "":
		return fmt.Sprintf("%s %s", s.Brand, s.Model)
	default:
		return s.InstanceName
	}
}

// CommissionableInfo contains information for advertising a commissionable device.
type CommissionableInfo struct {
	// InstanceName is the mDNS instance name; it is also the UDC announcement payload.
	InstanceName string

	// Discriminator identifies this device (0-4095).
	Discriminator uint16

	// Categories lists device categories.
	Categories []DeviceCategory

	Serial     string
	Brand      string
	Model      string
	DeviceName string

	// Port is the service port. Zero means DefaultPort.
	Port uint16
}

// Validate checks the fields required for advertising.
func (i *CommissionableInfo) Validate() error {
	if err := ValidateInstanceName(i.InstanceName); err != nil {
		return err
	}
	if i.Discriminator > MaxDiscriminator {
		return ErrInvalidDiscriminator
	}
	if len(i.Categories) == 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyCategories)
	}
	return nil
}

// ValidateInstanceName checks if an instance name is usable as a DNS label.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidInstanceName)
	}
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: exceeds %d bytes", ErrInvalidInstanceName, MaxInstanceNameLen)
	}
	return nil
}
