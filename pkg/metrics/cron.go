package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "delizzia"

// CronJobMetrics records outcomes of scheduled jobs.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCronJobMetrics registers the job metrics on reg. A nil registerer yields a no-op recorder.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_success_total",
			Help:      "Successful scheduled job executions.",
		}, []string{"job"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_failure_total",
			Help:      "Failed scheduled job executions.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.duration, m.success, m.failure)
	return m
}

func (c *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
}

func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
