package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"

	"apdiag/internal/api"
	"apdiag/internal/config"
	"apdiag/internal/model"
)

func TestLoadConfig_EmptyPathGivesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTarget, cfg.Client.Target)
	assert.Equal(t, config.DefaultListen, cfg.Server.Listen)
}

func TestLoadConfig_ReadsSavedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "apdiag.yaml")
	require.NoError(t, config.Save(path, config.Config{AP: config.APConfig{SSID: "lab"}}))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "lab", cfg.AP.SSID)
}

func TestRunPing_RecordsLoss(t *testing.T) {
	t.Parallel()

	calls := 0
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("42"))
	}))
	defer s.Close()

	var out bytes.Buffer
	samples := runPing(context.Background(), api.NewClient(s.URL), s.URL, 3, ratelimit.NewUnlimited(), &out)
	require.Len(t, samples, 3)
	assert.False(t, samples[0].Lost)
	assert.True(t, samples[1].Lost)
	assert.Equal(t, 3, samples[2].Seq)
	for _, smp := range samples {
		assert.Equal(t, model.KindPing, smp.Kind)
	}
	assert.Equal(t, 3, strings.Count(out.String(), "seq="))
	assert.Contains(t, out.String(), "seq=2 lost")
}
