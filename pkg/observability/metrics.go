package observability

import (
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values of nodeweave_node_executions_total.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultMemoized = "memoized"
)

// Metrics holds the Prometheus collectors fed by graph hooks.
type Metrics struct {
	Executions  *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Connections *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodeweave_node_executions_total",
				Help: "Node results by type and outcome",
			},
			[]string{"type_id", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nodeweave_node_duration_seconds",
				Help:    "Duration of node execute bodies, upstream pulls included",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"type_id"},
		),
		Connections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodeweave_connection_changes_total",
				Help: "Connect and disconnect operations",
			},
			[]string{"event"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.Executions, m.Duration, m.Connections} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeResult: func(e *domain.NodeEvent) {
			switch {
			case e.Memoized:
				m.Executions.WithLabelValues(e.TypeID, ResultMemoized).Inc()
				return
			case e.IsError():
				m.Executions.WithLabelValues(e.TypeID, ResultError).Inc()
			default:
				m.Executions.WithLabelValues(e.TypeID, ResultOK).Inc()
			}
			m.Duration.WithLabelValues(e.TypeID).Observe(e.Duration.Seconds())
		},
		OnConnect: func(e *domain.ConnectionEvent) {
			m.Connections.WithLabelValues(string(e.Type)).Inc()
		},
		OnDisconnect: func(e *domain.ConnectionEvent) {
			m.Connections.WithLabelValues(string(e.Type)).Inc()
		},
	}
}
