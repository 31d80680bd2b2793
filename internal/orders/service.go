// Package orders prices, numbers and persists restaurant orders.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/delizzia/pos-backend/internal/costing"
	"github.com/delizzia/pos-backend/internal/ratetable"
	"github.com/delizzia/pos-backend/internal/reports"
	"github.com/delizzia/pos-backend/pkg/clock"
	pkgdb "github.com/delizzia/pos-backend/pkg/db"
	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/metrics"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/delizzia/pos-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	orderNumberPrefix = "ORD"
	maxDailySequence  = 9999
	createAttempts    = 3
)

// Service exposes order workflows to controllers and the analytics layer.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (pagination.Page[models.Order], error)
	UpdateStatus(ctx context.Context, orderNumber string, next enums.OrderStatus) (*models.Order, error)
	History(ctx context.Context, from, to time.Time, channel *enums.Channel) ([]models.Order, error)
	Profitability(ctx context.Context, orderNumber string) (reports.OrderProfitability, error)
}

// ServiceParams wires the order service dependencies.
type ServiceParams struct {
	Repo     Repository
	Menu     MenuLookup
	Tx       txRunner
	Rates    ratetable.Provider
	Clock    clock.Clock
	Location *time.Location
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
}

type service struct {
	repo    Repository
	menu    MenuLookup
	tx      txRunner
	rates   ratetable.Provider
	clock   clock.Clock
	loc     *time.Location
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("orders repository required")
	}
	if params.Menu == nil {
		return nil, errors.New("menu lookup required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Rates == nil {
		return nil, errors.New("rate provider required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		menu:    params.Menu,
		tx:      params.Tx,
		rates:   params.Rates,
		clock:   clock.OrReal(params.Clock),
		loc:     loc,
		metrics: params.Metrics,
		logg:    logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCash
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"payment_method": string(input.PaymentMethod)})
	}
	if len(input.Items) == 0 {
		s.metrics.IncPricingFailure(string(pkgerrors.CodeValidation))
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty cart")
	}

	catalog, err := s.loadCatalog(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	lines := make([]costing.LineItem, 0, len(input.Items))
	for _, item := range input.Items {
		menuItem := catalog[item.MenuItemID]
		lines = append(lines, costing.LineItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			UnitPrice:  menuItem.Price,
			UnitCost:   menuItem.Cost,
		})
	}

	breakdown, err := costing.PriceOrder(s.rates.Current(), lines, input.Channel, input.DeliveryFee)
	if err != nil {
		reason := "unknown"
		if typed := pkgerrors.As(err); typed != nil {
			reason = string(typed.Code())
		}
		s.metrics.IncPricingFailure(reason)
		return nil, err
	}

	now := s.clock.Now()
	order := buildOrder(input, breakdown, catalog, now.UTC().Truncate(time.Microsecond))
	prefix := orderNumberPrefix + now.In(s.loc).Format("20060102")

	if err := s.persist(ctx, order, prefix); err != nil {
		return nil, err
	}

	s.metrics.IncPriced(string(order.Channel))
	logCtx := s.logg.WithOrderNumber(ctx, order.OrderNumber)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"channel":    string(order.Channel),
		"total":      order.Total.StringFixed(2),
		"net_profit": order.NetProfit.StringFixed(2),
	})
	s.logg.Info(logCtx, "order created")
	return order, nil
}

func (s *service) loadCatalog(ctx context.Context, items []LineItemInput) (map[uuid.UUID]models.MenuItem, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for i, item := range items {
		if item.MenuItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item id required").
				WithDetails(map[string]any{"field": fmt.Sprintf("items[%d].menu_item_id", i)})
		}
		ids = append(ids, item.MenuItemID)
	}

	catalog, err := s.menu.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu items")
	}
	for i, item := range items {
		menuItem, ok := catalog[item.MenuItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item not found").
				WithDetails(map[string]any{"field": fmt.Sprintf("items[%d].menu_item_id", i), "menu_item_id": item.MenuItemID.String()})
		}
		if !menuItem.IsAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item is not available").
				WithDetails(map[string]any{"field": fmt.Sprintf("items[%d].menu_item_id", i), "menu_item_id": item.MenuItemID.String()})
		}
	}
	return catalog, nil
}

func buildOrder(input CreateOrderInput, b costing.Breakdown, catalog map[uuid.UUID]models.MenuItem, createdAt time.Time) *models.Order {
	order := &models.Order{
		ID:               uuid.New(),
		Channel:          b.Channel,
		Status:           enums.OrderStatusPending,
		PaymentMethod:    input.PaymentMethod,
		PlatformOrderID:  strings.TrimSpace(input.PlatformOrderID),
		CustomerName:     strings.TrimSpace(input.CustomerName),
		CustomerPhone:    strings.TrimSpace(input.CustomerPhone),
		DeliveryAddress:  strings.TrimSpace(input.DeliveryAddress),
		Notes:            strings.TrimSpace(input.Notes),
		Subtotal:         b.Subtotal,
		TaxAmount:        b.TaxAmount,
		DeliveryFee:      b.DeliveryFee,
		Total:            b.Total,
		CommissionRate:   b.CommissionRate,
		CommissionAmount: b.CommissionAmount,
		PackagingTier:    b.PackagingTier,
		PackagingCost:    b.PackagingCost,
		IngredientCost:   b.IngredientCost,
		NetRevenue:       b.NetRevenue,
		NetProfit:        b.NetProfit,
		CreatedBy:        input.CreatedBy,
		CreatedAt:        createdAt,
	}
	for _, item := range input.Items {
		menuItem := catalog[item.MenuItemID]
		order.LineItems = append(order.LineItems, models.OrderLineItem{
			OrderID:    order.ID,
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   item.Quantity,
			UnitPrice:  menuItem.Price,
			UnitCost:   menuItem.Cost,
			LineTotal:  money.Round(menuItem.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))),
			Notes:      strings.TrimSpace(item.Notes),
			CreatedAt:  createdAt,
		})
	}
	return order
}

// persist assigns the next daily sequence inside a transaction. A concurrent writer that
// claims the same number surfaces as a unique violation and the attempt is repeated.
func (s *service) persist(ctx context.Context, order *models.Order, prefix string) error {
	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			last, err := repo.LastOrderNumber(ctx, prefix)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order sequence")
			}
			number, err := nextOrderNumber(prefix, last)
			if err != nil {
				return err
			}
			order.OrderNumber = number
			return repo.Create(ctx, order)
		})
		if err == nil {
			return nil
		}
		if !pkgdb.IsUniqueViolation(err, "") {
			if pkgerrors.As(err) != nil {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		lastErr = err
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_number": order.OrderNumber,
			"attempt":      attempt,
		}), "order number collision, retrying")
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "could not allocate order number")
}

func nextOrderNumber(prefix, last string) (string, error) {
	seq := 1
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "malformed order number").
				WithDetails(map[string]any{"order_number": last})
		}
		seq = n + 1
	}
	if seq > maxDailySequence {
		return "", pkgerrors.New(pkgerrors.CodeConflict, "daily order sequence exhausted").
			WithDetails(map[string]any{"prefix": prefix})
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (s *service) Get(ctx context.Context, orderNumber string) (*models.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (pagination.Page[models.Order], error) {
	if filters.Channel != nil && *filters.Channel == "" {
		filters.Channel = nil
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return pagination.Page[models.Order]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return pagination.Page[models.Order]{}, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, cursor, pagination.LimitWithBuffer(params.Limit), filters)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, Key: o.OrderNumber}
	}), nil
}

func (s *service) UpdateStatus(ctx context.Context, orderNumber string, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(next)})
	}
	order, err := s.Get(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal status transition").
			WithDetails(map[string]any{"from": string(order.Status), "to": string(next)})
	}

	var deliveredAt *time.Time
	if next == enums.OrderStatusDelivered {
		at := s.clock.Now().UTC().Truncate(time.Microsecond)
		deliveredAt = &at
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, next, deliveredAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	logCtx := s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{"from": string(order.Status), "to": string(next)}), "order status changed")

	order.Status = next
	if deliveredAt != nil {
		order.DeliveredAt = deliveredAt
	}
	return order, nil
}

// History returns non-paginated orders created in [from, to], oldest first. Cancelled
// orders are included; callers that aggregate drop them.
func (s *service) History(ctx context.Context, from, to time.Time, channel *enums.Channel) ([]models.Order, error) {
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end must not precede start")
	}
	rows, err := s.repo.FindCreatedBetween(ctx, from, to, channel)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}
	return rows, nil
}

func (s *service) Profitability(ctx context.Context, orderNumber string) (reports.OrderProfitability, error) {
	order, err := s.Get(ctx, orderNumber)
	if err != nil {
		return reports.OrderProfitability{}, err
	}
	return reports.Profitability(*order), nil
}
