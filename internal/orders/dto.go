package orders

import (
	"encoding/json"
	"time"

	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemInput references a menu item on a new order.
type LineItemInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	Notes      string
}

// CreateOrderInput carries everything needed to price and record an order.
type CreateOrderInput struct {
	Channel         enums.Channel
	PaymentMethod   enums.PaymentMethod
	Items           []LineItemInput
	DeliveryFee     decimal.Decimal
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	PlatformOrderID string
	Notes           string
	CreatedBy       *uuid.UUID
}

// ListFilters narrow the order listing.
type ListFilters struct {
	Channel  *enums.Channel
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// LineItemDTO is the API shape of an order line.
type LineItemDTO struct {
	MenuItemID uuid.UUID   `json:"menu_item_id"`
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	UnitPrice  json.Number `json:"unit_price"`
	LineTotal  json.Number `json:"line_total"`
	Notes      string      `json:"notes,omitempty"`
}

// OrderDTO is the API shape of a priced order. Money is rendered with two decimals.
type OrderDTO struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	Channel          enums.Channel       `json:"channel"`
	Status           enums.OrderStatus   `json:"status"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	PlatformOrderID  string              `json:"platform_order_id,omitempty"`
	CustomerName     string              `json:"customer_name,omitempty"`
	CustomerPhone    string              `json:"customer_phone,omitempty"`
	DeliveryAddress  string              `json:"delivery_address,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	Subtotal         json.Number         `json:"subtotal"`
	TaxAmount        json.Number         `json:"tax_amount"`
	DeliveryFee      json.Number         `json:"delivery_fee"`
	Total            json.Number         `json:"total"`
	CommissionRate   json.Number         `json:"commission_rate"`
	CommissionAmount json.Number         `json:"commission_amount"`
	PackagingTier    enums.PackagingTier `json:"packaging_tier"`
	PackagingCost    json.Number         `json:"packaging_cost"`
	IngredientCost   json.Number         `json:"ingredient_cost"`
	NetRevenue       json.Number         `json:"net_revenue"`
	NetProfit        json.Number         `json:"net_profit"`
	Items            []LineItemDTO       `json:"items,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		Channel:          o.Channel,
		Status:           o.Status,
		PaymentMethod:    o.PaymentMethod,
		PlatformOrderID:  o.PlatformOrderID,
		CustomerName:     o.CustomerName,
		CustomerPhone:    o.CustomerPhone,
		DeliveryAddress:  o.DeliveryAddress,
		Notes:            o.Notes,
		Subtotal:         money.Fixed(o.Subtotal),
		TaxAmount:        money.Fixed(o.TaxAmount),
		DeliveryFee:      money.Fixed(o.DeliveryFee),
		Total:            money.Fixed(o.Total),
		CommissionRate:   money.FixedRate(o.CommissionRate),
		CommissionAmount: money.Fixed(o.CommissionAmount),
		PackagingTier:    o.PackagingTier,
		PackagingCost:    money.Fixed(o.PackagingCost),
		IngredientCost:   money.Fixed(o.IngredientCost),
		NetRevenue:       money.Fixed(o.NetRevenue),
		NetProfit:        money.Fixed(o.NetProfit),
		CreatedAt:        o.CreatedAt,
		DeliveredAt:      o.DeliveredAt,
	}
	for _, li := range o.LineItems {
		dto.Items = append(dto.Items, LineItemDTO{
			MenuItemID: li.MenuItemID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  money.Fixed(li.UnitPrice),
			LineTotal:  money.Fixed(li.LineTotal),
			Notes:      li.Notes,
		})
	}
	return dto
}

// FromPage converts a page of models.
func FromPage(orders []models.Order, nextCursor string) OrderList {
	list := OrderList{Orders: make([]OrderDTO, 0, len(orders)), NextCursor: nextCursor}
	for i := range orders {
		list.Orders = append(list.Orders, *FromModel(&orders[i]))
	}
	return list
}
