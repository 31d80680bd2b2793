package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuItem is a sellable dish with its list price and ingredient cost.
type MenuItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	Description        string          `gorm:"column:description;not null;default:''"`
	Category           string          `gorm:"column:category;not null;index"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Cost               decimal.Decimal `gorm:"column:cost;type:numeric(12,2);not null"`
	PreparationMinutes int             `gorm:"column:preparation_minutes;not null;default:0"`
	IsAvailable        bool            `gorm:"column:is_available;not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MenuItem) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
