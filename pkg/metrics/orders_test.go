package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOrderMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)
	m.IncPriced("uber_eats")
	m.IncPriced("uber_eats")
	m.IncPriced("")
	m.IncPricingFailure("CONFIGURATION_ERROR")
	m.IncReport("hour")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "delizzia_orders_priced_total", "channel", "uber_eats"); err != nil || got != 2 {
		t.Fatalf("expected 2 priced uber_eats orders, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "delizzia_orders_priced_total", "channel", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected empty channel normalized to unknown, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "delizzia_order_pricing_failures_total", "reason", "CONFIGURATION_ERROR"); err != nil || got != 1 {
		t.Fatalf("expected one configuration failure, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "delizzia_reports_generated_total", "granularity", "hour"); err != nil || got != 1 {
		t.Fatalf("expected one hourly report, got %f (%v)", got, err)
	}
}
