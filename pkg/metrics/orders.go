package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts order pricing outcomes and report generation.
type OrderMetrics struct {
	priced   *prometheus.CounterVec
	failures *prometheus.CounterVec
	reports  *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on reg. A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		priced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_priced_total",
			Help:      "Orders priced and persisted, by channel.",
		}, []string{"channel"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_pricing_failures_total",
			Help:      "Orders rejected during pricing, by error code.",
		}, []string{"reason"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Period reports built, by bucket granularity.",
		}, []string{"granularity"}),
	}
	reg.MustRegister(m.priced, m.failures, m.reports)
	return m
}

func (m *OrderMetrics) IncPriced(channel string) {
	if m == nil || m.priced == nil {
		return
	}
	m.priced.WithLabelValues(normalizeLabel(channel)).Inc()
}

func (m *OrderMetrics) IncPricingFailure(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *OrderMetrics) IncReport(granularity string) {
	if m == nil || m.reports == nil {
		return
	}
	m.reports.WithLabelValues(normalizeLabel(granularity)).Inc()
}
