package analytics

import (
	"net/http"
	"strings"

	"github.com/delizzia/pos-backend/api/responses"
	"github.com/delizzia/pos-backend/api/validators"
	internalanalytics "github.com/delizzia/pos-backend/internal/analytics"
	"github.com/delizzia/pos-backend/internal/reports"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
)

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable")
}

// Channels compares sales channels over ?from..?to, defaulting to today.
func Channels(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		loc := svc.Location()
		from, err := validators.ParseQueryTime(r, "from", loc, false)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to", loc, true)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if (from == nil) != (to == nil) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from and to must be provided together"))
			return
		}
		if from == nil {
			window := svc.DefaultWindow()
			from, to = &window.Start, &window.End
		}
		if to.Before(*from) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from"))
			return
		}

		stats, err := svc.ChannelPerformance(ctx, *from, *to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalanalytics.FromCommissionSummary(reports.SummarizeCommission(stats)))
	}
}

// Trends projects revenue from recent history. ?days, ?horizon and ?model are optional.
func Trends(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		days, err := validators.ParseQueryInt(r, "days", 0, 1, internalanalytics.MaxHistoryDays)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		horizon, err := validators.ParseQueryInt(r, "horizon", 0, 1, internalanalytics.MaxHorizon)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		req := internalanalytics.TrendsRequest{Days: days, Horizon: horizon}
		if raw := strings.TrimSpace(r.URL.Query().Get("model")); raw != "" {
			model, err := enums.ParseProjectionModel(strings.ToLower(raw))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid projection model").
					WithDetails(map[string]any{"model": raw}))
				return
			}
			req.Model = model
		}

		result, err := svc.Trends(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalanalytics.FromTrends(result))
	}
}

func Pricing(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		target, err := validators.ParseQueryDecimal(r, "target_margin")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rec, err := svc.RecommendPrice(ctx, itemID, target)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalanalytics.FromRecommendation(rec))
	}
}
