package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPInterface       = "wlan0"
	DefaultListen            = ":80"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultChunkSize         = 4096
	DefaultDownloadSize      = 1024 * 1024
	DefaultBackpressureYield = time.Millisecond
	DefaultWriteSlice        = 50 * time.Millisecond
	DefaultUplinkTimeout     = 5 * time.Second
	DefaultLogLevel          = "info"
	DefaultLogOutput         = "stdout"
	DefaultTarget            = "192.168.4.1"

	// MinPassphraseLen is the WPA2-PSK lower bound.
	MinPassphraseLen = 8
	maxChunkSize     = 64 * 1024
)

// Config holds every setting of the diagnostic service and its CLI.
type Config struct {
	AP       APConfig       `yaml:"ap"`
	Server   ServerConfig   `yaml:"server"`
	Transfer TransferConfig `yaml:"transfer"`
	Uplink   UplinkConfig   `yaml:"uplink"`
	Log      LogConfig      `yaml:"log"`
	Client   ClientConfig   `yaml:"client"`
}

// APConfig describes the access point the service runs on. Radio bring-up
// happens elsewhere; these values are only read.
type APConfig struct {
	SSID             string `yaml:"ssid"`
	Passphrase       string `yaml:"passphrase"`
	Interface        string `yaml:"interface"`
	StationInterface string `yaml:"station_interface"`
}

// ScanInterface returns the interface used for surveys. In AP+STA mode the
// station side performs the scan.
func (c APConfig) ScanInterface() string {
	if c.StationInterface != "" {
		return c.StationInterface
	}
	return c.Interface
}

type ServerConfig struct {
	Listen            string        `yaml:"listen"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// TransferConfig tunes the bulk transfer engine.
type TransferConfig struct {
	ChunkSize         int           `yaml:"chunk_size"`
	DefaultSize       int64         `yaml:"default_size"`
	BackpressureYield time.Duration `yaml:"backpressure_yield"`
	WriteSlice        time.Duration `yaml:"write_slice"`
}

type UplinkConfig struct {
	STUNServers []string      `yaml:"stun_servers"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
	Debug  bool   `yaml:"debug"`
}

// ClientConfig is used by the measurement subcommands.
type ClientConfig struct {
	Target      string `yaml:"target"`
	ResultsPath string `yaml:"results_path"`
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// Save writes a YAML config file to disk. The file may carry the AP
// passphrase, so it is written 0600.
func Save(path string, cfg Config) error {
	ApplyDefaults(&cfg)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate performs minimal validation for required fields.
func Validate(cfg Config) error {
	if cfg.AP.Interface == "" {
		return fmt.Errorf("ap.interface is required")
	}
	if cfg.AP.Passphrase != "" && len(cfg.AP.Passphrase) < MinPassphraseLen {
		return fmt.Errorf("ap.passphrase must be at least %d characters", MinPassphraseLen)
	}
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Transfer.ChunkSize <= 0 || cfg.Transfer.ChunkSize > maxChunkSize {
		return fmt.Errorf("transfer.chunk_size must be in 1..%d", maxChunkSize)
	}
	if cfg.Transfer.DefaultSize < 0 {
		return fmt.Errorf("transfer.default_size must not be negative")
	}
	switch cfg.Log.Output {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("log.output must be stdout or stderr, got %q", cfg.Log.Output)
	}
	return nil
}

// ApplyDefaults fills in default values when empty.
func ApplyDefaults(cfg *Config) {
	if cfg.AP.Interface == "" {
		cfg.AP.Interface = DefaultAPInterface
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}

	if cfg.Transfer.ChunkSize == 0 {
		cfg.Transfer.ChunkSize = DefaultChunkSize
	}
	if cfg.Transfer.DefaultSize == 0 {
		cfg.Transfer.DefaultSize = DefaultDownloadSize
	}
	if cfg.Transfer.BackpressureYield == 0 {
		cfg.Transfer.BackpressureYield = DefaultBackpressureYield
	}
	if cfg.Transfer.WriteSlice == 0 {
		cfg.Transfer.WriteSlice = DefaultWriteSlice
	}

	if cfg.Uplink.Timeout == 0 {
		cfg.Uplink.Timeout = DefaultUplinkTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	if cfg.Client.Target == "" {
		cfg.Client.Target = DefaultTarget
	}
}
