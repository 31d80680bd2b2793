package menu

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/delizzia/pos-backend/api/responses"
	"github.com/delizzia/pos-backend/api/validators"
	internalmenu "github.com/delizzia/pos-backend/internal/menu"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
)

type createItemRequest struct {
	Name               string          `json:"name" validate:"required,max=120"`
	Description        string          `json:"description" validate:"max=500"`
	Category           string          `json:"category" validate:"required,max=60"`
	Price              decimal.Decimal `json:"price" validate:"gt=0"`
	Cost               decimal.Decimal `json:"cost" validate:"gte=0"`
	PreparationMinutes int             `json:"preparation_minutes" validate:"gte=0"`
	IsAvailable        *bool           `json:"is_available"`
}

type updateItemRequest struct {
	Name               *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Description        *string          `json:"description" validate:"omitempty,max=500"`
	Category           *string          `json:"category" validate:"omitempty,min=1,max=60"`
	Price              *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	Cost               *decimal.Decimal `json:"cost" validate:"omitempty,gte=0"`
	PreparationMinutes *int             `json:"preparation_minutes" validate:"omitempty,gte=0"`
	IsAvailable        *bool            `json:"is_available"`
}

// List returns menu items, optionally filtered by ?category and ?available=true.
func List(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}
		filter := internalmenu.ListFilter{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), 60),
		}
		if raw := r.URL.Query().Get("available"); raw != "" {
			available, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "available must be a boolean").WithDetails(map[string]any{"field": "available"}))
				return
			}
			filter.AvailableOnly = available
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]*internalmenu.ItemDTO, 0, len(items))
		for i := range items {
			out = append(out, internalmenu.FromModel(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func Get(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "itemId"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalmenu.FromModel(item))
	}
}

func Create(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}
		var body createItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), internalmenu.CreateItemInput{
			Name:               body.Name,
			Description:        body.Description,
			Category:           body.Category,
			Price:              body.Price,
			Cost:               body.Cost,
			PreparationMinutes: body.PreparationMinutes,
			IsAvailable:        body.IsAvailable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalmenu.FromModel(item))
	}
}

func Update(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "itemId"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Update(r.Context(), id, internalmenu.UpdateItemInput{
			Name:               body.Name,
			Description:        body.Description,
			Category:           body.Category,
			Price:              body.Price,
			Cost:               body.Cost,
			PreparationMinutes: body.PreparationMinutes,
			IsAvailable:        body.IsAvailable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalmenu.FromModel(item))
	}
}
