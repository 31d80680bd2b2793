package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/delizzia/pos-backend/internal/ratetable"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	name  string
	table ratetable.Table
	ok    bool
	err   error
	loads int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Load(context.Context) (ratetable.Table, bool, error) {
	f.loads++
	return f.table, f.ok, f.err
}

func customTable(t *testing.T, uber string) ratetable.Table {
	t.Helper()
	table, err := ratetable.FromStrings(
		map[string]string{"uber_eats": uber, "phone": "0"},
		map[string]string{"small": "0.15", "medium": "0.20", "large": "0.25"},
	)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

func TestRateReloadJobAppliesFirstAvailableSource(t *testing.T) {
	store := ratetable.NewStore(ratetable.Default())
	broken := &fakeSource{name: "redis", err: errors.New("connection refused")}
	file := &fakeSource{name: "file", table: customTable(t, "0.22"), ok: true}
	unused := &fakeSource{name: "spare", table: customTable(t, "0.10"), ok: true}

	job, err := NewRateReloadJob(RateReloadJobParams{
		Logger:  testLogger(),
		Store:   store,
		Sources: []ratetable.Source{broken, nil, file, unused},
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	rate, err := store.Current().RateFor(enums.ChannelUberEats)
	if err != nil {
		t.Fatalf("rate for uber: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("0.22")) {
		t.Fatalf("expected reloaded rate 0.22, got %s", rate)
	}
	if unused.loads != 0 {
		t.Fatalf("sources after the first hit should not be consulted")
	}
}

func TestRateReloadJobKeepsTableWhenNothingToApply(t *testing.T) {
	initial := ratetable.Default()
	store := ratetable.NewStore(initial)
	job, err := NewRateReloadJob(RateReloadJobParams{
		Logger:  testLogger(),
		Store:   store,
		Sources: []ratetable.Source{&fakeSource{name: "file"}},
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !store.Current().Equal(initial) {
		t.Fatalf("expected table unchanged")
	}
}

func TestRateReloadJobReportsErrorsWhenAllSourcesFail(t *testing.T) {
	initial := ratetable.Default()
	store := ratetable.NewStore(initial)
	job, err := NewRateReloadJob(RateReloadJobParams{
		Logger: testLogger(),
		Store:  store,
		Sources: []ratetable.Source{
			&fakeSource{name: "redis", err: errors.New("timeout")},
			&fakeSource{name: "file", err: errors.New("bad yaml")},
		},
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected combined error")
	}
	if !store.Current().Equal(initial) {
		t.Fatalf("failed reload must keep the current table")
	}
}

func TestNewRateReloadJobRequiresStore(t *testing.T) {
	if _, err := NewRateReloadJob(RateReloadJobParams{Logger: testLogger()}); err == nil {
		t.Fatalf("expected error without store")
	}
}
