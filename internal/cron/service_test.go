package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeLock struct {
	acquired bool
	err      error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.acquired = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

func TestServiceRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	reg := prometheus.NewRegistry()
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(success, failure),
		Lock:     &fakeLock{},
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if success.runs != 1 || failure.runs != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", success.runs, failure.runs)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			counts[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	if counts["delizzia_job_success_total"] != 1 || counts["delizzia_job_failure_total"] != 1 {
		t.Fatalf("unexpected job counters %v", counts)
	}
}

func TestServiceRunOnceSkipsWhenLocked(t *testing.T) {
	job := &testJob{name: "export"}
	lock := &fakeLock{acquired: true}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: lock})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job to be skipped, ran %d", job.runs)
	}

	lock.err = errors.New("redis down")
	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected lock error")
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "reload"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &LocalLock{},
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected initial cycle to run, ran %d", job.runs)
	}
}

func TestLocalLockPreventsOverlap(t *testing.T) {
	var lock LocalLock
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	if ok, _ := lock.Acquire(ctx); ok {
		t.Fatalf("expected second acquire to fail")
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("expected acquire after release")
	}
}

type fakeRedis struct {
	values map[string]string
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func TestRedisLockReleasesOnlyOwnLock(t *testing.T) {
	store := &fakeRedis{values: map[string]string{}}
	ctx := context.Background()
	first, err := NewRedisLock(store, "lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "lock:cron", time.Minute)

	if ok, _ := first.Acquire(ctx); !ok {
		t.Fatalf("expected first acquire")
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatalf("expected second acquire to fail")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, ok := store.values["lock:cron"]; !ok {
		t.Fatalf("non-owner release must not delete the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok := store.values["lock:cron"]; ok {
		t.Fatalf("owner release should delete the lock")
	}
}
