// Package config loads and validates the host-side configuration for the
// Callisto enforcement interlock.
//
// Configuration is YAML with environment variable overrides (CALLISTO_*).
// Validation is fail-fast: a malformed file or out-of-range threshold is
// rejected at startup, never at call time.
package config

import (
	"time"

	"mercator-hq/callisto/pkg/gate"
)

// Config is the root configuration.
type Config struct {
	// Lanes maps lane names to enforcement modes: "disabled",
	// "logging_only" or "enforce".
	Lanes map[string]string `yaml:"lanes"`

	// MonitorLane is the lane the rollback monitor observes.
	MonitorLane string `yaml:"monitor_lane"`

	Rollback   RollbackConfig   `yaml:"rollback"`
	Circuit    CircuitConfig    `yaml:"circuit"`
	KillSwitch KillSwitchConfig `yaml:"kill_switch"`
	Audit      AuditConfig      `yaml:"audit"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Admin      AdminConfig      `yaml:"admin"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// RollbackConfig configures the rollback monitor.
type RollbackConfig struct {
	// MinCriticalBlockRate is the safety floor in [0,1].
	MinCriticalBlockRate float64 `yaml:"min_critical_block_rate"`

	// WindowMinutes is the strict observation window.
	WindowMinutes int `yaml:"window_minutes"`

	// MinSamples is the sample floor below which rollback never trips.
	MinSamples int `yaml:"min_samples"`
}

// CircuitConfig configures the per-lane circuit breakers.
type CircuitConfig struct {
	// FailureThreshold is the evaluator failure count that opens a breaker.
	FailureThreshold int `yaml:"failure_threshold"`

	// RecoverySeconds is how long an opened breaker stays open.
	RecoverySeconds int `yaml:"recovery_seconds"`
}

// KillSwitchConfig configures the emergency override sentinel.
type KillSwitchConfig struct {
	// Path is the sentinel file. Empty disables the kill switch.
	Path string `yaml:"path"`

	// Watch switches from stat-per-call to an fsnotify-cached flag. This
	// trades the within-one-call guarantee for lower per-decision cost.
	Watch bool `yaml:"watch"`
}

// AuditConfig configures the transition audit trail.
type AuditConfig struct {
	// Enabled turns transition persistence on.
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite file. Empty means in-memory storage.
	DBPath string `yaml:"db_path"`

	// Buffer is the async recorder channel size.
	Buffer int `yaml:"buffer"`

	// RetentionDays is how long events are kept; zero keeps them forever.
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps stored events; zero means no cap.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// MetricsConfig configures Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Path      string `yaml:"path"`
}

// AdminConfig configures the admin HTTP endpoint of the reference host.
type AdminConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// ToGateConfig bridges the file configuration to the gate's immutable
// runtime configuration. Collaborators (metrics sink, audit sink, kill
// switch override) are wired by the host afterwards.
func (c *Config) ToGateConfig() gate.Config {
	lanes := make(map[string]gate.Mode, len(c.Lanes))
	for lane, mode := range c.Lanes {
		lanes[lane] = gate.Mode(mode)
	}
	return gate.Config{
		Lanes:                   lanes,
		MonitorLane:             c.MonitorLane,
		MinCriticalBlockRate:    c.Rollback.MinCriticalBlockRate,
		RollbackWindow:          time.Duration(c.Rollback.WindowMinutes) * time.Minute,
		MinSamplesForRollback:   c.Rollback.MinSamples,
		CircuitFailureThreshold: c.Circuit.FailureThreshold,
		CircuitRecovery:         time.Duration(c.Circuit.RecoverySeconds) * time.Second,
		KillSwitchPath:          c.KillSwitch.Path,
	}
}
