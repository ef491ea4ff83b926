package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "listing-expiry"

	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	if got := testutil.ToFloat64(metrics.runs.WithLabelValues(job, "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.runs.WithLabelValues(job, "failure")); got != 1 {
		t.Fatalf("expected 1 failure, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.lastSuccess.WithLabelValues(job)); got <= 0 {
		t.Fatalf("expected last success timestamp set, got %f", got)
	}
	if got := testutil.CollectAndCount(metrics.duration, "job_duration_seconds"); got != 1 {
		t.Fatalf("expected 1 duration series, got %d", got)
	}
}

func TestCronJobMetricsNormalizesEmptyJobName(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)

	metrics.IncFailure("")

	if got := testutil.ToFloat64(metrics.runs.WithLabelValues("unknown", "failure")); got != 1 {
		t.Fatalf("expected empty job name recorded as unknown, got %f", got)
	}
}

func TestCronJobMetricsNoopWithoutRegisterer(t *testing.T) {
	var metrics *CronJobMetrics
	metrics.IncSuccess("listing-expiry")

	metrics = NewCronJobMetrics(nil)
	metrics.ObserveDuration("listing-expiry", time.Second)
	metrics.IncFailure("listing-expiry")
}
