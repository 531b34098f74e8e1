package txrouter

import "time"

// cfg holds a Router's options, built up by Opt values the way the
// teacher's own cfg/Opt pattern configures a Client.
type cfg struct {
	logger    Logger
	metrics   Metrics
	clock     ClockSource
	transport ShardTransport

	slowTransactionThreshold time.Duration

	staleRoutingRetryEnabled bool
	snapshotRetryEnabled     bool

	now tickSource
}

func defaultCfg() cfg {
	return cfg{
		logger:                   nopLogger{},
		metrics:                  noopMetrics{},
		slowTransactionThreshold: 100 * time.Millisecond,
		staleRoutingRetryEnabled: true,
		snapshotRetryEnabled:     true,
	}
}

// Opt configures a Router at construction time.
type Opt interface {
	apply(*cfg)
}

type optFunc func(*cfg)

func (f optFunc) apply(c *cfg) { f(c) }

// WithLogger sets the Logger a Router logs through.
func WithLogger(l Logger) Opt {
	return optFunc(func(c *cfg) { c.logger = l })
}

// WithMetrics sets the Metrics handle a Router reports through.
func WithMetrics(m Metrics) Opt {
	return optFunc(func(c *cfg) { c.metrics = m })
}

// WithClock sets the logical-clock source SetDefaultAtClusterTime reads
// from.
func WithClock(clock ClockSource) Opt {
	return optFunc(func(c *cfg) { c.clock = clock })
}

// WithTransport sets the collaborator used to dispatch commands to
// shards for abort broadcasts, commit fan-out, and the coordinator
// hand-off.
func WithTransport(t ShardTransport) Opt {
	return optFunc(func(c *cfg) { c.transport = t })
}

// WithSlowTransactionThreshold sets the open duration above which a
// transaction is logged and counted as slow when its lifecycle ends
// (spec.md §4.9); zero or negative disables the check.
func WithSlowTransactionThreshold(d time.Duration) Opt {
	return optFunc(func(c *cfg) { c.slowTransactionThreshold = d })
}

// WithStaleRoutingRetryEnabled toggles the feature gate spec.md §4.5
// requires for stale shard/database routing-error retries.
func WithStaleRoutingRetryEnabled(enabled bool) Opt {
	return optFunc(func(c *cfg) { c.staleRoutingRetryEnabled = enabled })
}

// WithSnapshotRetryEnabled toggles the feature gate spec.md §4.5
// requires for snapshot-unavailable retries.
func WithSnapshotRetryEnabled(enabled bool) Opt {
	return optFunc(func(c *cfg) { c.snapshotRetryEnabled = enabled })
}

// withTickSource overrides the monotonic tick source timingStats uses;
// unexported because only tests need a fake clock.
func withTickSource(now tickSource) Opt {
	return optFunc(func(c *cfg) { c.now = now })
}
