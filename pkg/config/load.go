package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// CALLISTO_* environment variable overrides. Environment variables always
// take precedence over file values.
//
// The loading sequence is:
//  1. Load YAML from file (applies defaults)
//  2. Apply environment variable overrides
//  3. Re-validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies CALLISTO_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CALLISTO_MONITOR_LANE"); val != "" {
		cfg.MonitorLane = val
	}

	if val := os.Getenv("CALLISTO_ROLLBACK_MIN_CRITICAL_BLOCK_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Rollback.MinCriticalBlockRate = f
		}
	}
	if val := os.Getenv("CALLISTO_ROLLBACK_WINDOW_MINUTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Rollback.WindowMinutes = i
		}
	}
	if val := os.Getenv("CALLISTO_ROLLBACK_MIN_SAMPLES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Rollback.MinSamples = i
		}
	}

	if val := os.Getenv("CALLISTO_CIRCUIT_FAILURE_THRESHOLD"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Circuit.FailureThreshold = i
		}
	}
	if val := os.Getenv("CALLISTO_CIRCUIT_RECOVERY_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Circuit.RecoverySeconds = i
		}
	}

	if val := os.Getenv("CALLISTO_KILL_SWITCH_PATH"); val != "" {
		cfg.KillSwitch.Path = val
	}
	if val := os.Getenv("CALLISTO_KILL_SWITCH_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.KillSwitch.Watch = b
		}
	}

	if val := os.Getenv("CALLISTO_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_AUDIT_DB_PATH"); val != "" {
		cfg.Audit.DBPath = val
	}

	if val := os.Getenv("CALLISTO_ADMIN_LISTEN_ADDRESS"); val != "" {
		cfg.Admin.ListenAddress = val
	}

	if val := os.Getenv("CALLISTO_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
