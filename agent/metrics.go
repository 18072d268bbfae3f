package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the instrumentation for the analysis loop. Construct one per
// process and inject it; the package registers nothing globally.
type Metrics struct {
	analyses  *prometheus.CounterVec
	toolCalls *prometheus.CounterVec
	fallbacks prometheus.Counter
}

// NewMetrics registers the agent metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsentinel",
			Subsystem: "agent",
			Name:      "analyses_total",
			Help:      "Completed analyses by outcome.",
		}, []string{"outcome"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsentinel",
			Subsystem: "agent",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and status.",
		}, []string{"tool", "status"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docsentinel",
			Subsystem: "agent",
			Name:      "followup_fallbacks_total",
			Help:      "Follow-up generations that fell back to the fixed question set.",
		}),
	}
}

func (m *Metrics) observeAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeToolCall(tool string, failed bool) {
	if m == nil {
		return
	}
	status := "success"
	if failed {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
}

func (m *Metrics) observeFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}
