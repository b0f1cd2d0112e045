package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	LabelNameOutcome = "outcome"
	LabelNameReason  = "reason"
	LabelNameResult  = "result"
	LabelNameSession = "session"

	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

type EditorMetrics struct {
	// only updatable through NewSession and Drop
	sessions      prometheus.Gauge
	moves         *prometheus.CounterVec
	parseFailures prometheus.Counter
	snapshots     *prometheus.CounterVec
	treeNodes     *prometheus.GaugeVec
}

var (
	editorMetrics *EditorMetrics
	once          sync.Once
)

func GetEditorMetrics() *EditorMetrics {
	once.Do(func() {
		editorMetrics = &EditorMetrics{
			sessions: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions",
				Help:      "Number of open editing sessions",
			}),
			moves: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "moves_total",
				Help:      "Move requests by outcome. Rejected moves carry the rejection reason.",
			}, []string{
				LabelNameOutcome,
				LabelNameReason,
			}),
			parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "parse_failures_total",
				Help:      "Tree listings that could not be parsed",
			}),
			snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "snapshots_total",
				Help:      "Persisted session snapshots by result",
			}, []string{
				LabelNameResult,
			}),
			treeNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tree_nodes",
				Help:      "Number of nodes in the edited tree of a session, including its root",
			}, []string{
				LabelNameSession,
			}),
		}

		registry.MustRegister(editorMetrics.sessions)
		registry.MustRegister(editorMetrics.moves)
		registry.MustRegister(editorMetrics.parseFailures)
		registry.MustRegister(editorMetrics.snapshots)
		registry.MustRegister(editorMetrics.treeNodes)
	})

	return editorMetrics
}

func (m *EditorMetrics) MoveAccepted() {
	m.moves.WithLabelValues(OutcomeAccepted, "").Inc()
}

func (m *EditorMetrics) MoveRejected(reason string) {
	m.moves.WithLabelValues(OutcomeRejected, reason).Inc()
}

func (m *EditorMetrics) ParseFailed() {
	m.parseFailures.Inc()
}

func (m *EditorMetrics) SnapshotTaken(err error) {
	if err != nil {
		m.snapshots.WithLabelValues(ResultFailure).Inc()
		return
	}
	m.snapshots.WithLabelValues(ResultSuccess).Inc()
}

// Sessions, Moves, ParseFailures, Snapshots and TreeNodes are exposed for assertions.
func (m *EditorMetrics) Sessions() prometheus.Gauge {
	return m.sessions
}

func (m *EditorMetrics) Moves() *prometheus.CounterVec {
	return m.moves
}

func (m *EditorMetrics) ParseFailures() prometheus.Counter {
	return m.parseFailures
}

func (m *EditorMetrics) Snapshots() *prometheus.CounterVec {
	return m.snapshots
}

func (m *EditorMetrics) TreeNodes() *prometheus.GaugeVec {
	return m.treeNodes
}
