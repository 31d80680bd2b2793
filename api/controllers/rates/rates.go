package rates

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/multierr"

	"github.com/delizzia/pos-backend/api/responses"
	"github.com/delizzia/pos-backend/api/validators"
	"github.com/delizzia/pos-backend/internal/ratetable"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
)

// Publisher shares a new table with the other API instances.
type Publisher interface {
	Publish(ctx context.Context, t ratetable.Table) error
}

// Get returns the commission rates and packaging costs in effect.
func Get(store *ratetable.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rate table unavailable"))
			return
		}
		responses.WriteSuccess(w, store.Current().Snapshot())
	}
}

// Put replaces the whole rate table. The table is published before it is
// installed locally so a failed publish leaves every instance unchanged.
func Put(store *ratetable.Store, publisher Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rate table unavailable"))
			return
		}
		var body ratetable.Snapshot
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		next, err := ratetable.FromSnapshot(body)
		if err != nil {
			responses.WriteError(ctx, logg, w, asValidation(err))
			return
		}
		if publisher != nil {
			if err := publisher.Publish(ctx, next); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish rate table"))
				return
			}
		}
		store.Swap(next)

		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"channels": len(body.CommissionRates),
			}), "rates.updated")
		}
		responses.WriteSuccess(w, next.Snapshot())
	}
}

func asValidation(err error) error {
	if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		return err
	}
	var problems []string
	for _, e := range multierr.Errors(errors.Unwrap(err)) {
		problems = append(problems, e.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rate table").
		WithDetails(map[string]any{"problems": problems})
}
