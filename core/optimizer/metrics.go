package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/tariffbroker/core/model"
)

var (
	evaluationsTotal *prometheus.CounterVec
	fallbacksTotal   *prometheus.CounterVec
	delegationsTotal *prometheus.CounterVec
	bestUtility      *prometheus.GaugeVec
	shiftingDegraded prometheus.Counter
)

func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec, prometheus.Counter) {
	evals := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizer_utility_evaluations_total",
			Help: "Number of candidate utility evaluations",
		},
		[]string{"strategy"},
	)
	fallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizer_fallbacks_total",
			Help: "Number of times a strategy fell back to a simpler result",
		},
		[]string{"strategy", "reason"},
	)
	delegations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizer_delegations_total",
			Help: "Composite strategy delegations by child role",
		},
		[]string{"strategy", "child"},
	)
	best := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "optimizer_best_utility",
			Help: "Utility of the best action found in the last call",
		},
		[]string{"strategy"},
	)
	degraded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optimizer_shifting_degraded_total",
			Help: "Number of shifting predictions that fell back to unshifted energy",
		},
	)
	return evals, fallbacks, delegations, best, degraded
}

func init() {
	evaluationsTotal, fallbacksTotal, delegationsTotal, bestUtility, shiftingDegraded = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers optimizer metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(evaluationsTotal, fallbacksTotal, delegationsTotal, bestUtility, shiftingDegraded)
}

// ResetMetrics reinitializes the collectors for tests and registers them on
// reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	evaluationsTotal, fallbacksTotal, delegationsTotal, bestUtility, shiftingDegraded = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func observeBest(strategy string, r *model.Ranking) {
	if best, ok := r.Best(); ok {
		bestUtility.WithLabelValues(strategy).Set(best.Utility)
	}
}
