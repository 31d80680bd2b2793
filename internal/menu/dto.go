package menu

import (
	"encoding/json"
	"time"

	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is the API shape of a menu item.
type ItemDTO struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"name"`
	Description        string      `json:"description"`
	Category           string      `json:"category"`
	Price              json.Number `json:"price"`
	Cost               json.Number `json:"cost"`
	Margin             json.Number `json:"margin"`
	PreparationMinutes int         `json:"preparation_minutes"`
	IsAvailable        bool        `json:"is_available"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// CreateItemInput carries a new menu item.
type CreateItemInput struct {
	Name               string
	Description        string
	Category           string
	Price              decimal.Decimal
	Cost               decimal.Decimal
	PreparationMinutes int
	IsAvailable        *bool
}

// UpdateItemInput patches a menu item; nil fields are left unchanged.
type UpdateItemInput struct {
	Name               *string
	Description        *string
	Category           *string
	Price              *decimal.Decimal
	Cost               *decimal.Decimal
	PreparationMinutes *int
	IsAvailable        *bool
}

// ListFilter narrows menu listings.
type ListFilter struct {
	Category      string
	AvailableOnly bool
}

func FromModel(m *models.MenuItem) *ItemDTO {
	if m == nil {
		return nil
	}
	margin := decimal.Zero
	if m.Price.IsPositive() {
		margin = money.RoundRate(m.Price.Sub(m.Cost).Div(m.Price))
	}
	return &ItemDTO{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		Category:           m.Category,
		Price:              money.Fixed(m.Price),
		Cost:               money.Fixed(m.Cost),
		Margin:             money.FixedRate(margin),
		PreparationMinutes: m.PreparationMinutes,
		IsAvailable:        m.IsAvailable,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
