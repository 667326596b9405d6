package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/callisto/pkg/gate"
)

// Validate checks the full configuration and aggregates every problem into a
// single error, so a misconfigured deployment is reported completely on the
// first attempt.
func Validate(cfg *Config) error {
	var problems []string

	for lane, mode := range cfg.Lanes {
		if lane == "" {
			problems = append(problems, "lane names must be non-empty")
		}
		if !gate.Mode(mode).Valid() {
			problems = append(problems, fmt.Sprintf("lane %q has unknown mode %q (want disabled, logging_only or enforce)", lane, mode))
		}
	}

	if cfg.MonitorLane != "" {
		if _, ok := cfg.Lanes[cfg.MonitorLane]; !ok {
			problems = append(problems, fmt.Sprintf("monitor_lane %q is not a configured lane", cfg.MonitorLane))
		}
	}

	if cfg.Rollback.MinCriticalBlockRate < 0 || cfg.Rollback.MinCriticalBlockRate > 1 {
		problems = append(problems, fmt.Sprintf("rollback.min_critical_block_rate must be in [0,1], got %v", cfg.Rollback.MinCriticalBlockRate))
	}
	if cfg.Rollback.WindowMinutes <= 0 {
		problems = append(problems, fmt.Sprintf("rollback.window_minutes must be positive, got %d", cfg.Rollback.WindowMinutes))
	}
	if cfg.Rollback.MinSamples < 1 {
		problems = append(problems, fmt.Sprintf("rollback.min_samples must be >= 1, got %d", cfg.Rollback.MinSamples))
	}

	if cfg.Circuit.FailureThreshold < 1 {
		problems = append(problems, fmt.Sprintf("circuit.failure_threshold must be >= 1, got %d", cfg.Circuit.FailureThreshold))
	}
	if cfg.Circuit.RecoverySeconds < 0 {
		problems = append(problems, fmt.Sprintf("circuit.recovery_seconds must be >= 0, got %d", cfg.Circuit.RecoverySeconds))
	}

	if cfg.KillSwitch.Watch && cfg.KillSwitch.Path == "" {
		problems = append(problems, "kill_switch.watch requires kill_switch.path")
	}

	if cfg.Audit.RetentionDays < 0 {
		problems = append(problems, fmt.Sprintf("audit.retention_days must be >= 0, got %d", cfg.Audit.RetentionDays))
	}
	if cfg.Audit.MaxRecords < 0 {
		problems = append(problems, fmt.Sprintf("audit.max_records must be >= 0, got %d", cfg.Audit.MaxRecords))
	}
	if cfg.Audit.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Audit.PruneSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("audit.prune_schedule %q is not a valid cron expression: %v", cfg.Audit.PruneSchedule, err))
		}
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q unknown (want debug, info, warn or error)", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q unknown (want json or text)", cfg.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
