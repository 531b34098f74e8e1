package txrouter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the handle the router calls into for the lifecycle events
// spec.md names: new-transaction, commit outcome, abort, and the
// slow-transaction threshold. The metrics sink itself is an external
// collaborator (spec.md §1); this is the call-site contract.
type Metrics interface {
	TransactionStarted(recovering bool)
	TransactionCommitted(commitType CommitType)
	TransactionAborted(cause string)
	CommitUnknown()
	SlowTransaction(d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) TransactionStarted(bool)         {}
func (noopMetrics) TransactionCommitted(CommitType) {}
func (noopMetrics) TransactionAborted(string)       {}
func (noopMetrics) CommitUnknown()                  {}
func (noopMetrics) SlowTransaction(time.Duration)   {}

// promMetrics is the default Metrics backed by client_golang.
type promMetrics struct {
	started    *prometheus.CounterVec
	committed  *prometheus.CounterVec
	aborted    *prometheus.CounterVec
	unknown    prometheus.Counter
	slowCount  prometheus.Counter
	slowLatest prometheus.Gauge
}

// NewPrometheusMetrics registers a txrouter_* family of collectors with
// reg and returns a Metrics backed by them.
func NewPrometheusMetrics(reg prometheus.Registerer) Metrics {
	m := &promMetrics{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txrouter_transactions_started_total",
			Help: "Transactions begun, split by whether they entered commit recovery.",
		}, []string{"recovering"}),
		committed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txrouter_transactions_committed_total",
			Help: "Transactions successfully committed, split by commit type.",
		}, []string{"commit_type"}),
		aborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txrouter_transactions_aborted_total",
			Help: "Transactions aborted, split by abort cause.",
		}, []string{"cause"}),
		unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txrouter_commit_unknown_total",
			Help: "Commit attempts that ended in an unknown outcome.",
		}),
		slowCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txrouter_slow_transactions_total",
			Help: "Transactions whose total duration exceeded the configured threshold.",
		}),
		slowLatest: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "txrouter_slow_transaction_last_seconds",
			Help: "Duration of the most recently observed slow transaction.",
		}),
	}
	reg.MustRegister(m.started, m.committed, m.aborted, m.unknown, m.slowCount, m.slowLatest)
	return m
}

func (m *promMetrics) TransactionStarted(recovering bool) {
	m.started.WithLabelValues(boolLabel(recovering)).Inc()
}

func (m *promMetrics) TransactionCommitted(ct CommitType) {
	m.committed.WithLabelValues(ct.String()).Inc()
}

func (m *promMetrics) TransactionAborted(cause string) {
	if cause == "" {
		cause = "unknown"
	}
	m.aborted.WithLabelValues(cause).Inc()
}

func (m *promMetrics) CommitUnknown() { m.unknown.Inc() }

func (m *promMetrics) SlowTransaction(d time.Duration) {
	m.slowCount.Inc()
	m.slowLatest.Set(d.Seconds())
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
