package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// whitelistSet is a precomputed lookup table for whitelist membership checks.
var whitelistSet map[string]bool

func init() {
	whitelistSet = make(map[string]bool, len(WhitelistedVars))
	for _, v := range WhitelistedVars {
		whitelistSet[v] = true
	}
}

// LoadFile parses a KEY=VALUE config file at the given path.
//
// Lines are processed according to these rules:
//   - Empty lines and lines starting with # are skipped.
//   - Lines without an = sign are skipped.
//   - Leading and trailing whitespace is trimmed from both key and value.
//   - Matching single or double quotes around a value are removed.
//   - Keys not present in WhitelistedVars are silently ignored.
func LoadFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blanks and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on the first '='; the value may itself contain '='.
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := unquote(strings.TrimSpace(line[idx+1:]))

		// Enforce whitelist.
		if !whitelistSet[key] {
			continue
		}
		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return result, nil
}

// LoadWithPrecedence assembles a Config by merging sources in order of
// increasing priority:
//
//  1. Built-in defaults
//  2. Global config file (globalPath)
//  3. Project config file (projectPath)
//  4. Explicit config file (explicitPath)
//  5. CLI overrides (cliOverrides map)
//
// Empty paths are skipped. Missing global and project files are fine; an
// explicit file must exist.
func LoadWithPrecedence(globalPath, projectPath, explicitPath string, cliOverrides map[string]string) (*Config, error) {
	// Layer 1: built-in defaults.
	cfg := NewDefaultConfig()

	// Layers 2 and 3: global then project config file. A missing file is
	// not an error.
	for _, layer := range []struct {
		name string
		path string
	}{
		{"global config", globalPath},
		{"project config", projectPath},
	} {
		if layer.path == "" {
			continue
		}
		m, err := LoadFile(layer.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", layer.name, err)
		}
		ApplyMapToConfig(cfg, m)
	}

	// Layer 4: explicit config file (must exist if specified).
	if explicitPath != "" {
		m, err := LoadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("explicit config: %w", err)
		}
		ApplyMapToConfig(cfg, m)
	}

	// Layer 5: CLI overrides (highest priority).
	if len(cliOverrides) > 0 {
		ApplyMapToConfig(cfg, cliOverrides)
	}

	return cfg, nil
}

// ApplyMapToConfig sets fields on cfg from the key-value pairs in m.
// Unknown keys are ignored, and numeric values that fail to parse leave the
// previous value in place.
func ApplyMapToConfig(cfg *Config, m map[string]string) {
	for key, value := range m {
		switch key {
		case "LOG_FILE":
			cfg.LogFile = value
		case "QUEUE_FILE":
			cfg.QueueFile = value
		case "STATE_DIR":
			cfg.StateDir = value
		case "GENERATE_OUTPUT_DIR":
			cfg.GenerateOutputDir = value
		case "POLL_INTERVAL":
			setPositiveInt(&cfg.PollInterval, value)
		case "STALE_CHECK_INTERVAL":
			setPositiveInt(&cfg.StaleCheckInterval, value)
		case "STALE_INTERVALS":
			setPositiveInt(&cfg.StaleIntervals, value)
		case "GENERATE_POLL_INTERVAL":
			setPositiveInt(&cfg.GeneratePollInterval, value)
		case "SPLIT_SEED":
			if v, err := strconv.ParseInt(value, 10, 64); err == nil {
				cfg.SplitSeed = v
			}
		case "TRAIN_RATIO":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.TrainRatio = v
			}
		case "TEST_RATIO":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.TestRatio = v
			}
		case "APP_LOG_FILE":
			cfg.AppLogFile = value
		case "VERBOSE":
			cfg.Verbose = parseBool(value)
		case "NOTIFY_WEBHOOK":
			cfg.NotifyWebhook = value
		case "NOTIFY_CHANNEL":
			cfg.NotifyChannel = value
		case "NOTIFY_CHAT_ID":
			cfg.NotifyChatID = value
		}
	}
}

// setPositiveInt stores value in dst only when it parses as an integer
// greater than zero.
func setPositiveInt(dst *int, value string) {
	if v, err := strconv.Atoi(value); err == nil && v > 0 {
		*dst = v
	}
}

// parseBool interprets common boolean representations.
// "true", "1", "yes" (case-insensitive) return true; everything else returns false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
