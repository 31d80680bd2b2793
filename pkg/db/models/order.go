package models

import (
	"time"

	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a priced order. Every monetary column is computed once at creation
// and never recomputed, so reports stay stable when rates change.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string              `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	Channel          enums.Channel       `gorm:"column:channel;type:text;not null;index"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PlatformOrderID  string              `gorm:"column:platform_order_id;not null;default:''"`
	CustomerName     string              `gorm:"column:customer_name;not null;default:''"`
	CustomerPhone    string              `gorm:"column:customer_phone;not null;default:''"`
	DeliveryAddress  string              `gorm:"column:delivery_address;not null;default:''"`
	Notes            string              `gorm:"column:notes;not null;default:''"`
	Subtotal         decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount        decimal.Decimal     `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	DeliveryFee      decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	Total            decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	CommissionRate   decimal.Decimal     `gorm:"column:commission_rate;type:numeric(6,4);not null"`
	CommissionAmount decimal.Decimal     `gorm:"column:commission_amount;type:numeric(12,2);not null"`
	PackagingTier    enums.PackagingTier `gorm:"column:packaging_tier;type:text;not null"`
	PackagingCost    decimal.Decimal     `gorm:"column:packaging_cost;type:numeric(12,2);not null"`
	IngredientCost   decimal.Decimal     `gorm:"column:ingredient_cost;type:numeric(12,2);not null"`
	NetRevenue       decimal.Decimal     `gorm:"column:net_revenue;type:numeric(12,2);not null"`
	NetProfit        decimal.Decimal     `gorm:"column:net_profit;type:numeric(12,2);not null"`
	CreatedBy        *uuid.UUID          `gorm:"column:created_by;type:uuid"`
	LineItems        []OrderLineItem     `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt        time.Time           `gorm:"column:created_at;not null;index"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	DeliveredAt      *time.Time          `gorm:"column:delivered_at"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TotalCosts is ingredient plus packaging plus commission.
func (o Order) TotalCosts() decimal.Decimal {
	return o.IngredientCost.Add(o.PackagingCost).Add(o.CommissionAmount)
}
