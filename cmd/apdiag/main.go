package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"apdiag/internal/config"
	"apdiag/internal/logger"
)

var (
	cfgFile     string
	target      string
	resultsPath string
	debug       bool

	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "apdiag",
	Short: "WiFi access point diagnostics service and client",
	Long: `apdiag runs a small diagnostic HTTP service on a WiFi access point and
measures it from a connected client: status, network survey, associated
stations, latency, and download/upload throughput.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config")
	rootCmd.PersistentFlags().StringVar(&target, "target", "", "service address for client commands (default from config)")
	rootCmd.PersistentFlags().StringVar(&resultsPath, "results", "", "CSV file to append samples to (default from config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// setup loads the config and initializes logging before any subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	if target != "" {
		cfg.Client.Target = target
	}
	if resultsPath != "" {
		cfg.Client.ResultsPath = resultsPath
	}
	if debug {
		cfg.Log.Debug = true
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Debug:  cfg.Log.Debug,
		Output: cfg.Log.Output,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	appConfig = cfg
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		var cfg config.Config
		config.ApplyDefaults(&cfg)
		return cfg, nil
	}
	return config.Load(path)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
