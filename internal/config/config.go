// Package config defines the trainwatch configuration model and defaults.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < global config file < project config file <
// explicit config file < CLI flag overrides.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// WhitelistedVars lists every variable name that may appear in config
// files. Anything else is silently ignored during loading.
var WhitelistedVars = [16]string{
	"LOG_FILE",
	"QUEUE_FILE",
	"STATE_DIR",
	"GENERATE_OUTPUT_DIR",
	"POLL_INTERVAL",
	"STALE_CHECK_INTERVAL",
	"STALE_INTERVALS",
	"GENERATE_POLL_INTERVAL",
	"SPLIT_SEED",
	"TRAIN_RATIO",
	"TEST_RATIO",
	"APP_LOG_FILE",
	"VERBOSE",
	"NOTIFY_WEBHOOK",
	"NOTIFY_CHANNEL",
	"NOTIFY_CHAT_ID",
}

// Config holds every configuration field for trainwatch.
type Config struct {
	// Backend files.
	LogFile           string
	QueueFile         string
	GenerateOutputDir string

	// Run state.
	StateDir string

	// Polling, in seconds.
	PollInterval         int
	StaleCheckInterval   int
	StaleIntervals       int
	GeneratePollInterval int

	// Dataset split.
	SplitSeed  int64
	TrainRatio float64
	TestRatio  float64

	// Logging.
	AppLogFile string
	Verbose    bool

	// Notifications (sent only when NotifyChatID is set).
	NotifyWebhook string
	NotifyChannel string
	NotifyChatID  string

	// CLI-only flags (not loaded from config files).
	ConfigFile  string
	Resume      bool
	ResumeForce bool
	Clean       bool
	Format      string
}

// NewDefaultConfig returns a Config populated with all built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		LogFile:              "train.log",
		QueueFile:            "queue.json",
		GenerateOutputDir:    "output",
		StateDir:             ".trainwatch",
		PollInterval:         5,
		StaleCheckInterval:   5,
		StaleIntervals:       12,
		GeneratePollInterval: 3,
		SplitSeed:            42,
		TrainRatio:           0.8,
		TestRatio:            0.1,
		NotifyWebhook:        "http://127.0.0.1:18789/webhook",
		NotifyChannel:        "telegram",
		Format:               "text",
	}
}

// PollDuration returns PollInterval as a time.Duration.
func (c *Config) PollDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// StaleCheckDuration returns StaleCheckInterval as a time.Duration.
func (c *Config) StaleCheckDuration() time.Duration {
	return time.Duration(c.StaleCheckInterval) * time.Second
}

// GeneratePollDuration returns GeneratePollInterval as a time.Duration.
func (c *Config) GeneratePollDuration() time.Duration {
	return time.Duration(c.GeneratePollInterval) * time.Second
}

// GlobalConfigPath returns ~/.config/trainwatch/config, or "" when the home
// directory is unknown.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "trainwatch", "config")
}

// ProjectConfigPath returns the config file inside the state directory.
func ProjectConfigPath(stateDir string) string {
	return filepath.Join(stateDir, "config")
}
