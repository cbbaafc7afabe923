package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	ApplyDefaults(&cfg)

	assert.Equal(t, DefaultAPInterface, cfg.AP.Interface)
	assert.Equal(t, DefaultListen, cfg.Server.Listen)
	assert.Equal(t, DefaultChunkSize, cfg.Transfer.ChunkSize)
	assert.Equal(t, int64(DefaultDownloadSize), cfg.Transfer.DefaultSize)
	assert.Equal(t, time.Millisecond, cfg.Transfer.BackpressureYield)
	assert.Equal(t, DefaultTarget, cfg.Client.Target)
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestScanInterface_PrefersStation(t *testing.T) {
	t.Parallel()

	ap := APConfig{Interface: "wlan0"}
	assert.Equal(t, "wlan0", ap.ScanInterface())

	ap.StationInterface = "wlan1"
	assert.Equal(t, "wlan1", ap.ScanInterface())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	ApplyDefaults(&cfg)
	require.NoError(t, Validate(cfg))

	short := cfg
	short.AP.Passphrase = "1234567"
	require.Error(t, Validate(short))

	ok := cfg
	ok.AP.Passphrase = "12345678"
	require.NoError(t, Validate(ok))

	chunk := cfg
	chunk.Transfer.ChunkSize = 1 << 20
	require.Error(t, Validate(chunk))

	out := cfg
	out.Log.Output = "syslog"
	require.Error(t, Validate(out))
}

func TestLoad_ParsesDurationsAndDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "apdiag.yaml")
	data := "ap:\n  ssid: ESP32_WiFi_Test\n  interface: wlan1\n" +
		"transfer:\n  backpressure_yield: 2ms\n" +
		"uplink:\n  stun_servers: [\"stun.l.google.com:19302\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ESP32_WiFi_Test", cfg.AP.SSID)
	assert.Equal(t, "wlan1", cfg.AP.Interface)
	assert.Equal(t, 2*time.Millisecond, cfg.Transfer.BackpressureYield)
	assert.Equal(t, DefaultWriteSlice, cfg.Transfer.WriteSlice)
	assert.Equal(t, []string{"stun.l.google.com:19302"}, cfg.Uplink.STUNServers)
}

func TestSave_Writes0600(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "conf", "apdiag.yaml")
	cfg := Config{AP: APConfig{SSID: "ESP32_WiFi_Test", Passphrase: "12345678"}}
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "12345678", loaded.AP.Passphrase)
	assert.Equal(t, DefaultListen, loaded.Server.Listen)
}
