package menu

import (
	"context"

	"github.com/delizzia/pos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists menu items.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDs loads the items with the given ids. Missing ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error) {
	out := make(map[uuid.UUID]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.MenuItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.MenuItem, error) {
	q := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	var items []models.MenuItem
	if err := q.Order("category ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save writes every column of item.
func (r *Repository) Save(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
