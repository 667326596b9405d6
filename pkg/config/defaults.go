package config

// ApplyDefaults fills unset fields with production-safe defaults. The
// defaults bias conservative: unknown lanes resolve to logging-only inside
// the gate anyway, and the monitor thresholds mirror the documented rollout
// posture (80% floor over a 10 minute window, 20 sample minimum).
func ApplyDefaults(cfg *Config) {
	if cfg.Lanes == nil {
		cfg.Lanes = make(map[string]string)
	}

	if cfg.Rollback.MinCriticalBlockRate == 0 {
		cfg.Rollback.MinCriticalBlockRate = 0.8
	}
	if cfg.Rollback.WindowMinutes == 0 {
		cfg.Rollback.WindowMinutes = 10
	}
	if cfg.Rollback.MinSamples == 0 {
		cfg.Rollback.MinSamples = 20
	}

	if cfg.Circuit.FailureThreshold == 0 {
		cfg.Circuit.FailureThreshold = 5
	}
	if cfg.Circuit.RecoverySeconds == 0 {
		cfg.Circuit.RecoverySeconds = 300
	}

	if cfg.Audit.Buffer == 0 {
		cfg.Audit.Buffer = 256
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "callisto"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Admin.ListenAddress == "" {
		cfg.Admin.ListenAddress = "127.0.0.1:9750"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
