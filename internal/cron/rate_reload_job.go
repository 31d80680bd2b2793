package cron

import (
	"context"
	"fmt"

	"github.com/delizzia/pos-backend/internal/ratetable"
	"github.com/delizzia/pos-backend/pkg/logger"
	"go.uber.org/multierr"
)

type RateReloadJobParams struct {
	Logger *logger.Logger
	Store  *ratetable.Store
	// Sources are consulted in order; the first that yields a table wins.
	Sources []ratetable.Source
}

func NewRateReloadJob(params RateReloadJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("rate store required")
	}
	var sources []ratetable.Source
	for _, src := range params.Sources {
		if src != nil {
			sources = append(sources, src)
		}
	}
	return &rateReloadJob{logg: params.Logger, store: params.Store, sources: sources}, nil
}

type rateReloadJob struct {
	logg    *logger.Logger
	store   *ratetable.Store
	sources []ratetable.Source
}

func (j *rateReloadJob) Name() string { return "rate-table-reload" }

// Run swaps in the first available table. When no source yields one the current
// table is kept; source errors are reported only if nothing could be loaded.
func (j *rateReloadJob) Run(ctx context.Context) error {
	var errs error
	for _, src := range j.sources {
		table, ok, err := src.Load(ctx)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if !ok {
			continue
		}
		if errs != nil {
			j.logg.Warn(j.logg.WithField(ctx, "errors", errs.Error()), "earlier rate sources failed")
		}
		j.apply(ctx, src.Name(), table)
		return nil
	}
	if errs != nil {
		return fmt.Errorf("rate table reload: %w", errs)
	}
	return nil
}

func (j *rateReloadJob) apply(ctx context.Context, source string, table ratetable.Table) {
	if j.store.Current().Equal(table) {
		return
	}
	j.store.Swap(table)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"source":   source,
		"channels": len(table.Channels()),
	}), "rate table reloaded")
}
