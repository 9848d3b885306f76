package discovery

import (
	"errors"
	"strings"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		svc  CommissionableService
		want string
	}{
		{"device name wins", CommissionableService{InstanceName: "i", DeviceName: "Garage", Brand: "ACME"}, "Garage"},
		{"brand and model", CommissionableService{InstanceName: "i", Brand: "ACME", Model: "Box"}, "ACME Box"},
		{"instance fallback", CommissionableService{InstanceName: "evse-001"}, "evse-001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.svc.DisplayName(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCommissionableInfoValidate(t *testing.T) {
	valid := CommissionableInfo{
		InstanceName:  "evse-001",
		Discriminator: MaxDiscriminator,
		Categories:    []DeviceCategory{CategoryEMobility},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid info, got %v", err)
	}

	noName := valid
	noName.InstanceName = ""
	if err := noName.Validate(); !errors.Is(err, ErrInvalidInstanceName) {
		t.Errorf("empty name: expected ErrInvalidInstanceName, got %v", err)
	}

	badD := valid
	badD.Discriminator = MaxDiscriminator + 1
	if err := badD.Validate(); !errors.Is(err, ErrInvalidDiscriminator) {
		t.Errorf("discriminator: expected ErrInvalidDiscriminator, got %v", err)
	}

	noCats := valid
	noCats.Categories = nil
	if err := noCats.Validate(); !errors.Is(err, ErrMissingRequired) {
		t.Errorf("categories: expected ErrMissingRequired, got %v", err)
	}
}

func TestValidateInstanceNameLength(t *testing.T) {
	if err := ValidateInstanceName(strings.Repeat("a", MaxInstanceNameLen)); err != nil {
		t.Errorf("max length should be valid: %v", err)
	}
	if err := ValidateInstanceName(strings.Repeat("a", MaxInstanceNameLen+1)); !errors.Is(err, ErrInvalidInstanceName) {
		t.Errorf("expected ErrInvalidInstanceName, got %v", err)
	}
}

func TestDeviceCategoryString(t *testing.T) {
	if CategoryHVAC.String() != "HVAC" {
		t.Errorf("expected HVAC, got %s", CategoryHVAC.String())
	}
	if DeviceCategory(99).String() != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %s", DeviceCategory(99).String())
	}
}
