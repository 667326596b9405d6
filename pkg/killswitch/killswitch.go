// Package killswitch models the out-of-band emergency override: an
// externally observable boolean flag the gate polls on every enforcement
// decision.
//
// The canonical implementation is File, a stat-per-call existence probe that
// is never cached, so creating the sentinel takes effect within one call
// latency. Watched trades that immediacy guarantee for an event-driven cached
// flag, for hosts where per-call stat contention under the gate lock is
// measurable. Any implementation of Switch — a feature-flag client, for
// example — can replace the file without changing the gate's contract.
package killswitch

import "os"

// Switch is the externally observable emergency override flag.
type Switch interface {
	// Engaged reports whether the override is active. Implementations must
	// be cheap and non-blocking: the gate calls this while holding its lock.
	Engaged() bool
}

// File is a Switch backed by the existence of a sentinel file. Every call
// performs a fresh stat; nothing is cached.
type File struct {
	// Path is the sentinel file. An empty path is never engaged.
	Path string
}

// Engaged reports whether the sentinel file exists.
func (f File) Engaged() bool {
	if f.Path == "" {
		return false
	}
	_, err := os.Stat(f.Path)
	return err == nil
}
