package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/mash-protocol/mash-udc/cmd/mash-udc/interactive"
	"github.com/mash-protocol/mash-udc/pkg/discovery"
	"github.com/mash-protocol/mash-udc/pkg/log"
	"github.com/mash-protocol/mash-udc/pkg/transport"
	"github.com/mash-protocol/mash-udc/pkg/udc"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for commissioning announcements",
		Long: "serve binds the UDC port, tracks announcing devices, resolves them over " +
			"mDNS and hands each resolved device to the consent step.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", "", "UDP listen address (default \":5550\")")
	flags.String("interface", "", "Network interface for mDNS (default: all)")
	flags.String("protocol-log", "", "Capture protocol events to this .mlog file")
	flags.Int("max-clients", 0, "Maximum number of tracked clients")
	flags.Duration("client-timeout", 0, "Client record lifetime after last activity")
	flags.Bool("evict-oldest", false, "Evict the least recently active client when the table is full")
	flags.Duration("resolve-timeout", 0, "Timeout for one mDNS instance name lookup")
	flags.Bool("auto-approve", false, "Approve every resolved device without asking")
	flags.BoolP("interactive", "i", false, "Ask for consent on an interactive console")

	bindFlags(a, cmd, map[string]string{
		keyListen:         "listen",
		keyInterface:      "interface",
		keyProtocolLog:    "protocol-log",
		keyMaxClients:     "max-clients",
		keyClientTimeout:  "client-timeout",
		keyEvictOldest:    "evict-oldest",
		keyResolveTimeout: "resolve-timeout",
		keyAutoApprove:    "auto-approve",
		keyInteractive:    "interactive",
	})

	return cmd
}

// bindFlags binds flags to config keys. Only flags the user set override
// the file and environment.
func bindFlags(a *app, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		_ = a.v.BindPFlag(key, cmd.Flags().Lookup(name))
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var console *interactive.Console
	var err error
	if cfg.Interactive {
		console, err = interactive.New()
		if err != nil {
			return err
		}
	}

	out := cmd.ErrOrStderr()
	if console != nil {
		out = console.Stdout()
	}
	logger, err := newLogger(out, cfg.LogLevel)
	if err != nil {
		return err
	}

	protoLog, closeProtoLog, err := protocolLogger(logger, cfg.ProtocolLog)
	if err != nil {
		return err
	}
	defer closeProtoLog()

	server := udc.NewServer(udc.ServerConfig{
		Table: udc.NewClientTable(udc.TableConfig{
			MaxClients:    cfg.MaxClients,
			ClientTimeout: cfg.ClientTimeout,
			EvictOldest:   cfg.EvictOldest,
		}),
		Logger:         logger,
		ProtocolLogger: protoLog,
	})

	browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{Interface: cfg.Interface})
	defer browser.Stop()

	resolver := discovery.NewResolver(discovery.ResolverConfig{
		Browser: browser,
		Timeout: cfg.ResolveTimeout,
		OnFound: server.OnCommissionableNodeFound,
		Logger:  logger,
	})
	defer resolver.Close()
	server.SetInstanceNameResolver(resolver)

	if console != nil {
		console.Attach(server)
		server.SetUserConfirmationProvider(console)
	} else {
		server.SetUserConfirmationProvider(&logConsent{
			server:      server,
			logger:      logger,
			autoApprove: cfg.AutoApprove,
		})
	}

	listener, err := newListener(cfg, protoLog, server, logger)
	if err != nil {
		return err
	}
	if err := listener.Start(ctx); err != nil {
		return err
	}
	defer listener.Stop()

	logger.Info("UDC listener started",
		"addr", listener.Addr().String(),
		"max_clients", cfg.MaxClients,
		"client_timeout", cfg.ClientTimeout)

	go server.RunReaper(ctx, cfg.ReaperInterval)

	if console != nil {
		go console.Run(ctx, cancel)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func newListener(cfg *Config, protoLog log.Logger, server *udc.Server, logger *slog.Logger) (*transport.Server, error) {
	listener, err := transport.NewServer(transport.ServerConfig{
		Address:   cfg.Listen,
		Logger:    protoLog,
		OnMessage: server.OnMessageReceived,
		OnError: func(err error) {
			logger.Warn("transport error", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}
	return listener, nil
}
