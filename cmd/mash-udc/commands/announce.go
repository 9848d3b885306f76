package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mash-protocol/mash-udc/pkg/discovery"
	"github.com/mash-protocol/mash-udc/pkg/transport"
	"github.com/mash-protocol/mash-udc/pkg/udc"
)

type announceOptions struct {
	name          string
	to            string
	count         int
	interval      time.Duration
	timeout       time.Duration
	advertise     bool
	discriminator uint16
	categories    []uint
	port          uint16
	deviceName    string
}

func newAnnounceCmd(a *app) *cobra.Command {
	var opts announceOptions

	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Send identification declarations to a UDC listener",
		Long: "announce plays the device side: it sends the instance name to a listener " +
			"and, with --advertise, publishes the matching commissionable mDNS record " +
			"so the listener can resolve it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runAnnounce(ctx, cmd, cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.name, "name", "", "Instance name to announce (required)")
	flags.StringVar(&opts.to, "to", fmt.Sprintf("127.0.0.1:%d", transport.DefaultPort), "Listener address (host:port)")
	flags.IntVar(&opts.count, "count", 1, "Number of declarations to send")
	flags.DurationVar(&opts.interval, "interval", time.Second, "Delay between declarations")
	flags.DurationVar(&opts.timeout, "send-timeout", 2*time.Second, "Timeout for one send")
	flags.BoolVar(&opts.advertise, "advertise", false, "Advertise the instance over mDNS until interrupted")
	flags.Uint16Var(&opts.discriminator, "discriminator", 0, "Discriminator for the mDNS record (0-4095)")
	flags.UintSliceVar(&opts.categories, "category", []uint{uint(discovery.CategoryEMobility)}, "Device categories for the mDNS record")
	flags.Uint16Var(&opts.port, "port", discovery.DefaultPort, "Service port for the mDNS record")
	flags.StringVar(&opts.deviceName, "device-name", "", "Device name for the mDNS record")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runAnnounce(ctx context.Context, cmd *cobra.Command, cfg *Config, opts announceOptions) error {
	if opts.count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", opts.count)
	}
	if err := udc.ValidateInstanceName(opts.name); err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	protoLog, closeProtoLog, err := protocolLogger(logger, cfg.ProtocolLog)
	if err != nil {
		return err
	}
	defer closeProtoLog()

	var advertiser *discovery.MDNSAdvertiser
	if opts.advertise {
		info := &discovery.CommissionableInfo{
			InstanceName:  opts.name,
			Discriminator: opts.discriminator,
			DeviceName:    opts.deviceName,
			Port:          opts.port,
		}
		for _, c := range opts.categories {
			info.Categories = append(info.Categories, discovery.DeviceCategory(c))
		}

		advertiser = discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{Interface: cfg.Interface})
		if err := advertiser.AdvertiseCommissionable(ctx, info); err != nil {
			return fmt.Errorf("failed to advertise: %w", err)
		}
		defer advertiser.StopAll()
		logger.Info("advertising commissionable service", "instance", opts.name, "port", opts.port)
	}

	client := udc.NewClient(transport.NewUDPSender(transport.SenderConfig{Logger: protoLog}))
	for i := 0; i < opts.count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(opts.interval):
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, opts.timeout)
		err := client.SendIdentificationDeclaration(sendCtx, opts.to, opts.name)
		cancel()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent identification declaration %q to %s\n", opts.name, opts.to)
	}

	if advertiser != nil {
		logger.Info("advertising until interrupted")
		<-ctx.Done()
	}
	return nil
}
