package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/v1/orders", 201, 40*time.Millisecond)
	m.Observe("POST", "/api/v1/orders", 201, 60*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "delizzia_http_requests_total", "route", "/api/v1/orders"); err != nil || got != 2 {
		t.Fatalf("expected 2 order requests, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "delizzia_http_requests_total", "route", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unmatched route normalized, got %f (%v)", got, err)
	}
	sum, err := fetchHistogramSum(mfs, "delizzia_http_request_duration_seconds", "route", "/api/v1/orders")
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	if sum < 0.099 || sum > 0.101 {
		t.Fatalf("expected latency sum 0.1s, got %f", sum)
	}
}

func TestHTTPMetricsNilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.Observe("GET", "/", 200, time.Millisecond)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
}
