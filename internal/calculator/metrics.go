package calculator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts calculation outcomes.
type Metrics struct {
	calculations     *prometheus.CounterVec
	scenarios        prometheus.Counter
	droppedScenarios prometheus.Counter
}

// NewMetrics registers the calculator metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "emi_calculations_total",
			Help: "Total number of loan calculations by outcome.",
		}, []string{"outcome"}),
		scenarios: factory.NewCounter(prometheus.CounterOpts{
			Name: "emi_scenarios_total",
			Help: "Total number of rate scenarios computed.",
		}),
		droppedScenarios: factory.NewCounter(prometheus.CounterOpts{
			Name: "emi_scenarios_dropped_total",
			Help: "Total number of candidate rates dropped because no EMI could be computed.",
		}),
	}
}

func (m *Metrics) observe(calc *Calculation) {
	if m == nil {
		return
	}
	if calc == nil {
		m.calculations.WithLabelValues("invalid").Inc()
		return
	}
	m.calculations.WithLabelValues("ok").Inc()
	m.scenarios.Add(float64(len(calc.Scenarios)))
	m.droppedScenarios.Add(float64(len(calc.Dropped)))
}
