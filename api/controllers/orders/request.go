package orders

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalorders "github.com/delizzia/pos-backend/internal/orders"
	"github.com/delizzia/pos-backend/internal/reports"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/delizzia/pos-backend/pkg/money"
)

type lineItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"gte=1,lte=99"`
	Notes      string    `json:"notes" validate:"max=200"`
}

type createOrderRequest struct {
	Channel         string            `json:"channel" validate:"required,max=40"`
	PaymentMethod   string            `json:"payment_method" validate:"omitempty,max=20"`
	Items           []lineItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryFee     decimal.Decimal   `json:"delivery_fee" validate:"gte=0"`
	CustomerName    string            `json:"customer_name" validate:"max=120"`
	CustomerPhone   string            `json:"customer_phone" validate:"max=40"`
	DeliveryAddress string            `json:"delivery_address" validate:"max=300"`
	PlatformOrderID string            `json:"platform_order_id" validate:"max=80"`
	Notes           string            `json:"notes" validate:"max=500"`
}

func (r createOrderRequest) toInput(createdBy *uuid.UUID) internalorders.CreateOrderInput {
	in := internalorders.CreateOrderInput{
		Channel:         enums.Channel(r.Channel),
		PaymentMethod:   enums.PaymentMethod(r.PaymentMethod),
		DeliveryFee:     r.DeliveryFee,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		DeliveryAddress: r.DeliveryAddress,
		PlatformOrderID: r.PlatformOrderID,
		Notes:           r.Notes,
		CreatedBy:       createdBy,
		Items:           make([]internalorders.LineItemInput, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		in.Items = append(in.Items, internalorders.LineItemInput{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
		})
	}
	return in
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type profitabilityResponse struct {
	OrderNumber       string        `json:"order_number"`
	Channel           enums.Channel `json:"channel"`
	Total             json.Number   `json:"total"`
	NetProfit         json.Number   `json:"net_profit"`
	ProfitMargin      json.Number   `json:"profit_margin"`
	FoodCostPercent   json.Number   `json:"food_cost_percent"`
	CommissionPercent json.Number   `json:"commission_percent"`
	PackagingPercent  json.Number   `json:"packaging_percent"`
}

func fromProfitability(p reports.OrderProfitability) profitabilityResponse {
	return profitabilityResponse{
		OrderNumber:       p.OrderNumber,
		Channel:           p.Channel,
		Total:             money.Fixed(p.Total),
		NetProfit:         money.Fixed(p.NetProfit),
		ProfitMargin:      money.Fixed(p.ProfitMargin),
		FoodCostPercent:   money.Fixed(p.FoodCostPercent),
		CommissionPercent: money.Fixed(p.CommissionPercent),
		PackagingPercent:  money.Fixed(p.PackagingPercent),
	}
}
