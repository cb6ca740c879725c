package config_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/trainwatch/internal/config"
)

func TestNewDefaultConfigValues(t *testing.T) {
	cfg := config.NewDefaultConfig()
	require.NotNil(t, cfg)

	// Backend files.
	assert.Equal(t, "train.log", cfg.LogFile)
	assert.Equal(t, "queue.json", cfg.QueueFile)
	assert.Equal(t, "output", cfg.GenerateOutputDir)
	assert.Equal(t, ".trainwatch", cfg.StateDir)

	// Polling.
	assert.Equal(t, 5, cfg.PollInterval)
	assert.Equal(t, 5, cfg.StaleCheckInterval)
	assert.Equal(t, 12, cfg.StaleIntervals)
	assert.Equal(t, 3, cfg.GeneratePollInterval)

	// Split.
	assert.Equal(t, int64(42), cfg.SplitSeed)
	assert.Equal(t, 0.8, cfg.TrainRatio)
	assert.Equal(t, 0.1, cfg.TestRatio)

	// Notifications.
	assert.Equal(t, "http://127.0.0.1:18789/webhook", cfg.NotifyWebhook)
	assert.Equal(t, "telegram", cfg.NotifyChannel)
	assert.Empty(t, cfg.NotifyChatID)

	// CLI-only flags.
	assert.Empty(t, cfg.ConfigFile)
	assert.False(t, cfg.Resume)
	assert.False(t, cfg.Clean)
	assert.Equal(t, "text", cfg.Format)
}

func TestDurations(t *testing.T) {
	cfg := config.NewDefaultConfig()
	assert.Equal(t, 5*time.Second, cfg.PollDuration())
	assert.Equal(t, 5*time.Second, cfg.StaleCheckDuration())
	assert.Equal(t, 3*time.Second, cfg.GeneratePollDuration())
}

func TestWhitelistHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool)
	for _, v := range config.WhitelistedVars {
		assert.False(t, seen[v], "duplicate %s", v)
		assert.Equal(t, strings.ToUpper(v), v)
		seen[v] = true
	}
}

func TestProjectConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".trainwatch", "config"), config.ProjectConfigPath(".trainwatch"))
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	p := config.GlobalConfigPath()
	assert.True(t, strings.HasSuffix(p, filepath.Join(".config", "trainwatch", "config")))
}
