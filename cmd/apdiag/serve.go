package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"apdiag/internal/config"
	"apdiag/internal/execx"
	"apdiag/internal/linkmon"
	"apdiag/internal/logger"
	"apdiag/internal/radio"
	"apdiag/internal/roster"
	"apdiag/internal/server"
	"apdiag/internal/session"
	"apdiag/internal/status"
	"apdiag/internal/stunutil"
	"apdiag/internal/survey"
	"apdiag/internal/timeutil"
	"apdiag/internal/transfer"
)

var (
	serveListen string
	serveIface  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the diagnostic HTTP service",
	Long: `Serve the dashboard and the /api endpoints on the access point. Connections
are handled one at a time; each carries a single request.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := appConfig
		if serveListen != "" {
			cfg.Server.Listen = serveListen
		}
		if serveIface != "" {
			cfg.AP.Interface = serveIface
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveIface, "iface", "", "access point interface (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context, cfg config.Config) error {
	ctx, cancel := signalContext(parent)
	defer cancel()

	log := logger.WithComponent("serve")
	log.Info().
		Str("ssid", cfg.AP.SSID).
		Str("iface", cfg.AP.Interface).
		Str("scan_iface", cfg.AP.ScanInterface()).
		Str("listen", cfg.Server.Listen).
		Msg("apdiag starting")

	runner := execx.NewOSRunner()
	iw := radio.NewIW(runner, runner, cfg.AP.Interface, cfg.AP.ScanInterface())

	uptime := timeutil.NewUptime(nil)
	counter := &linkmon.Counter{}
	machine := session.NewMachine(nil, logger.WithComponent("session"))

	srv := server.New(cfg.Server, server.Deps{
		Machine:  machine,
		Uptime:   uptime,
		Status:   status.NewAggregator(cfg.AP.Interface, iw, status.SystemProbe{}, uptime, counter, logger.WithComponent("status")),
		Networks: survey.NewAdapter(iw, logger.WithComponent("survey")),
		Clients:  roster.NewAdapter(iw, logger.WithComponent("roster")),
		Uplink:   stunutil.NewProber(cfg.Uplink.STUNServers, cfg.Uplink.Timeout, logger.WithComponent("uplink")),
		Transfer: transfer.NewEngine(cfg.Transfer, nil, machine.Conn, logger.WithComponent("transfer")),
	}, logger.WithComponent("http"))
	monitor := linkmon.NewMonitor(iw, counter, logger.WithComponent("linkmon"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		return monitor.Run(gctx)
	})

	err := g.Wait()
	log.Info().Uint64("sessions", machine.Sessions()).Msg("apdiag stopped")
	return err
}
