package orders

import (
	"context"
	"time"

	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/delizzia/pos-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	LastOrderNumber(ctx context.Context, prefix string) (string, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int, filters ListFilters) ([]models.Order, error)
	FindCreatedBetween(ctx context.Context, from, to time.Time, channel *enums.Channel) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, deliveredAt *time.Time) error
}

// MenuLookup resolves the catalog items referenced by an order.
type MenuLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
