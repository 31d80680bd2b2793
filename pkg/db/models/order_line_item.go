package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLineItem snapshots one menu item within an order at the price and cost charged.
type OrderLineItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	UnitCost   decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	Notes      string          `gorm:"column:notes;not null;default:''"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLineItem) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
