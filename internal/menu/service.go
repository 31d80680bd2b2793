// Package menu manages the restaurant catalog.
package menu

import (
	"context"
	"errors"
	"strings"

	"github.com/delizzia/pos-backend/pkg/db/models"
	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/delizzia/pos-backend/pkg/logger"
	"github.com/delizzia/pos-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	List(ctx context.Context, filter ListFilter) ([]models.MenuItem, error)
	Save(ctx context.Context, item *models.MenuItem) error
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*models.MenuItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	List(ctx context.Context, filter ListFilter) ([]models.MenuItem, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.MenuItem, error)
}

type service struct {
	repo repository
	logg *logger.Logger
}

func NewService(repo repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("menu repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.MenuItem, error) {
	item := &models.MenuItem{
		Name:               strings.TrimSpace(input.Name),
		Description:        strings.TrimSpace(input.Description),
		Category:           strings.ToLower(strings.TrimSpace(input.Category)),
		Price:              money.Round(input.Price),
		Cost:               money.Round(input.Cost),
		PreparationMinutes: input.PreparationMinutes,
		IsAvailable:        true,
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu item")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"menu_item_id": item.ID.String(), "category": item.Category}), "menu item created")
	}
	return item, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item id required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.MenuItem, error) {
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.MenuItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		item.Category = strings.ToLower(strings.TrimSpace(*input.Category))
	}
	if input.Price != nil {
		item.Price = money.Round(*input.Price)
	}
	if input.Cost != nil {
		item.Cost = money.Round(*input.Cost)
	}
	if input.PreparationMinutes != nil {
		item.PreparationMinutes = *input.PreparationMinutes
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu item")
	}
	return item, nil
}

func validateItem(item *models.MenuItem) error {
	switch {
	case item.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case item.Category == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	case !item.Price.IsPositive():
		return invalidAmount("price must be positive", "price", item.Price)
	case item.Cost.IsNegative():
		return invalidAmount("cost must be non-negative", "cost", item.Cost)
	case item.PreparationMinutes < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "preparation minutes must be non-negative")
	}
	return nil
}

func invalidAmount(message, field string, value decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field, "value": value.String()})
}
