package orders

import (
	"context"
	"errors"
	"time"

	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/delizzia/pos-backend/pkg/enums"
	"github.com/delizzia/pos-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the order together with its line items.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// LastOrderNumber returns the highest order number starting with prefix, or "" when none exist.
func (r *repository) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Select("order_number").
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return order.OrderNumber, nil
}

func (r *repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }).
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns up to limit orders ordered by (created_at DESC, order_number DESC) after cursor.
func (r *repository) List(ctx context.Context, cursor *pagination.Cursor, limit int, filters ListFilters) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Channel != nil {
		q = q.Where("channel = ?", *filters.Channel)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", filters.DateFrom.UTC())
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", filters.DateTo.UTC())
	}
	if cursor != nil {
		at := cursor.CreatedAt.UTC()
		q = q.Where("(created_at < ?) OR (created_at = ? AND order_number < ?)", at, at, cursor.Key)
	}

	var rows []models.Order
	err := q.Order("created_at DESC").
		Order("order_number DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCreatedBetween loads every order created in [from, to], oldest first.
func (r *repository) FindCreatedBetween(ctx context.Context, from, to time.Time, channel *enums.Channel) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", from.UTC(), to.UTC())
	if channel != nil {
		q = q.Where("channel = ?", *channel)
	}

	var rows []models.Order
	if err := q.Order("created_at ASC").Order("order_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, deliveredAt *time.Time) error {
	updates := map[string]any{"status": status}
	if deliveredAt != nil {
		updates["delivered_at"] = deliveredAt.UTC()
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}
