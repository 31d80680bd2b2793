package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/delizzia/pos-backend/api/middleware"
	"github.com/delizzia/pos-backend/api/responses"
	"github.com/delizzia/pos-backend/api/validators"
	internalorders "github.com/delizzia/pos-backend/internal/orders"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/pagination"
)

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable")
}

// Create prices and records a new order for the authenticated user.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		body.Channel = strings.ToLower(strings.TrimSpace(body.Channel))
		body.PaymentMethod = strings.ToLower(strings.TrimSpace(body.PaymentMethod))

		order, err := svc.Create(ctx, body.toInput(middleware.UserUUIDFromContext(ctx)))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.FromModel(order))
	}
}

// List pages through orders newest first; ?channel, ?status, ?from and ?to narrow the result.
func List(svc internalorders.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var filters internalorders.ListFilters
		if raw := validators.SanitizeString(r.URL.Query().Get("channel"), 40); raw != "" {
			channel := enums.Channel(strings.ToLower(raw))
			filters.Channel = &channel
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(strings.ToLower(raw))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
					WithDetails(map[string]any{"status": raw}))
				return
			}
			filters.Status = &status
		}
		location := loc
		if location == nil {
			location = time.UTC
		}
		if filters.DateFrom, err = validators.ParseQueryTime(r, "from", location, false); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if filters.DateTo, err = validators.ParseQueryTime(r, "to", location, true); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from"))
			return
		}

		page, err := svc.List(ctx, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.FromPage(page.Items, page.NextCursor))
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		order, err := svc.Get(ctx, orderNumberParam(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.FromModel(order))
	}
}

// UpdateStatus advances the order along the kitchen lifecycle.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		next, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(body.Status)))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"status": body.Status}))
			return
		}
		order, err := svc.UpdateStatus(ctx, orderNumberParam(r), next)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.FromModel(order))
	}
}

func Profitability(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, unavailable())
			return
		}
		p, err := svc.Profitability(ctx, orderNumberParam(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromProfitability(p))
	}
}

func orderNumberParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "orderNumber")))
}
