// Package costing prices an order: totals, channel commission, packaging and profit.
package costing

import (
	"fmt"

	"github.com/delizzia/pos-backend/internal/ratetable"
	"github.com/delizzia/pos-backend/pkg/enums"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one catalog item on an order being priced.
type LineItem struct {
	MenuItemID uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
	UnitCost   decimal.Decimal
}

// Breakdown holds every financial field stored on an order. All amounts are at currency scale.
type Breakdown struct {
	Channel          enums.Channel
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	DeliveryFee      decimal.Decimal
	Total            decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	PackagingTier    enums.PackagingTier
	PackagingCost    decimal.Decimal
	IngredientCost   decimal.Decimal
	NetRevenue       decimal.Decimal
	NetProfit        decimal.Decimal
	TotalQuantity    int
}

// PriceOrder computes the breakdown for items sold through channel.
// The commission base is the total, delivery fee included. Commission is rounded
// before the net figures are derived so that
// total - commission - ingredient cost - packaging == net profit holds exactly.
func PriceOrder(table ratetable.Table, items []LineItem, channel enums.Channel, deliveryFee decimal.Decimal) (Breakdown, error) {
	if len(items) == 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "empty cart")
	}
	if deliveryFee.IsNegative() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee must be non-negative").
			WithDetails(map[string]any{"delivery_fee": deliveryFee.String()})
	}
	if err := validateItems(items); err != nil {
		return Breakdown{}, err
	}

	rate, err := table.RateFor(channel)
	if err != nil {
		return Breakdown{}, err
	}

	subtotal := decimal.Zero
	ingredients := decimal.Zero
	quantity := 0
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
		ingredients = ingredients.Add(item.UnitCost.Mul(qty))
		quantity += item.Quantity
	}

	tier := ratetable.TierFor(quantity)
	packaging, err := table.PackagingCost(tier)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Channel:        channel,
		Subtotal:       money.Round(subtotal),
		TaxAmount:      money.Zero,
		DeliveryFee:    money.Round(deliveryFee),
		CommissionRate: rate,
		PackagingTier:  tier,
		PackagingCost:  packaging,
		IngredientCost: money.Round(ingredients),
		TotalQuantity:  quantity,
	}
	b.Total = b.Subtotal.Add(b.TaxAmount).Add(b.DeliveryFee)
	b.CommissionAmount = money.Round(b.Total.Mul(rate))
	b.NetRevenue = b.Total.Sub(b.CommissionAmount)
	b.NetProfit = b.NetRevenue.Sub(b.IngredientCost).Sub(b.PackagingCost)
	return b, nil
}

// TotalCosts is commission plus ingredients plus packaging.
func (b Breakdown) TotalCosts() decimal.Decimal {
	return b.CommissionAmount.Add(b.IngredientCost).Add(b.PackagingCost)
}

// Reconciles reports whether the stored fields satisfy both order identities.
func (b Breakdown) Reconciles() bool {
	if !b.Total.Equal(b.Subtotal.Add(b.TaxAmount).Add(b.DeliveryFee)) {
		return false
	}
	return b.Total.Sub(b.TotalCosts()).Equal(b.NetProfit)
}

func validateItems(items []LineItem) error {
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case item.Quantity <= 0:
			return invalidItem(field, "quantity must be positive", item.Quantity)
		case !item.UnitPrice.IsPositive():
			return invalidItem(field, "unit price must be positive", item.UnitPrice.String())
		case item.UnitCost.IsNegative():
			return invalidItem(field, "unit cost must be non-negative", item.UnitCost.String())
		}
	}
	return nil
}

func invalidItem(field, message string, value any) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field, "value": value})
}
