package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics recorded by the engine.
type Metrics struct {
	// Settlement metrics
	SettlementsTotal   *prometheus.CounterVec
	SettlementDuration *prometheus.HistogramVec
	RefundsTotal       prometheus.Counter

	// Oracle metrics
	OracleRejectionsTotal *prometheus.CounterVec

	// Registry metrics
	AccountsRegistered prometheus.Gauge
	TierTransitions    *prometheus.CounterVec

	// Treasury metrics
	WithdrawalsTotal prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all engine metrics. A nil registry gets
// a fresh private one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnstile_settlements_total",
				Help: "Total number of payment settlements by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		SettlementDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turnstile_settlement_duration_seconds",
				Help:    "Settlement duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RefundsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "turnstile_refunds_total",
				Help: "Total number of overpayment refunds issued",
			},
		),
		OracleRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnstile_oracle_rejections_total",
				Help: "Total number of oracle readings rejected by validation",
			},
			[]string{"reason"},
		),
		AccountsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "turnstile_accounts_registered",
				Help: "Number of currently registered accounts",
			},
		),
		TierTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnstile_tier_transitions_total",
				Help: "Total number of tier transitions by target tier",
			},
			[]string{"tier"},
		),
		WithdrawalsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "turnstile_withdrawals_total",
				Help: "Total number of successful treasury withdrawals",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.SettlementsTotal,
		m.SettlementDuration,
		m.RefundsTotal,
		m.OracleRejectionsTotal,
		m.AccountsRegistered,
		m.TierTransitions,
		m.WithdrawalsTotal,
	)

	return m
}

// Registry returns the underlying Prometheus registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
