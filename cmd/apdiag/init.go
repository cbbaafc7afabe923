package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apdiag/internal/config"
)

var (
	initSSID       string
	initPassphrase string
	initIface      string
	initForce      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	// init must not require the file it is about to create.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfgFile == "" {
			return errors.New("--config is required")
		}
		if _, err := os.Stat(cfgFile); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
		}

		cfg := config.Config{
			AP: config.APConfig{
				SSID:       initSSID,
				Passphrase: initPassphrase,
				Interface:  initIface,
			},
		}
		config.ApplyDefaults(&cfg)
		if err := config.Validate(cfg); err != nil {
			return err
		}
		if err := config.Save(cfgFile, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initSSID, "ssid", "ESP32_WiFi_Test", "access point SSID")
	initCmd.Flags().StringVar(&initPassphrase, "passphrase", "", "access point passphrase (8+ characters)")
	initCmd.Flags().StringVar(&initIface, "iface", config.DefaultAPInterface, "access point interface")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
