package commands

import (
	"log/slog"

	"github.com/mash-protocol/mash-udc/pkg/discovery"
	"github.com/mash-protocol/mash-udc/pkg/udc"
)

// stateSetter is the part of udc.Server used to record a consent decision.
type stateSetter interface {
	SetClientProcessingState(instanceName string, state udc.ProcessingState)
}

// logConsent reports commissioning requests through slog. With autoApprove
// every request is accepted immediately.
type logConsent struct {
	server      stateSetter
	logger      *slog.Logger
	autoApprove bool
}

func (c *logConsent) OnUserDirectedCommissioningRequest(node *discovery.CommissionableService) {
	c.logger.Info("commissioning request",
		"instance", node.InstanceName,
		"name", node.DisplayName(),
		"host", node.Host,
		"port", node.Port,
		"discriminator", node.Discriminator,
		"addresses", node.Addresses)

	if c.autoApprove {
		c.logger.Info("auto-approving commissioning request", "instance", node.InstanceName)
		c.server.SetClientProcessingState(node.InstanceName, udc.StateObtainingOnboardingPayload)
	}
}

var _ udc.UserConfirmationProvider = (*logConsent)(nil)
