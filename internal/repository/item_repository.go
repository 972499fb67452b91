package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"itemhub/internal/errors"
	"itemhub/internal/model"
)

var errItemNotFound = errors.Wrap(errors.ErrNotFound, "item not found")

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository builds a GORM-backed item repository.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, offset, limit int) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	item.ID = 0
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = nil
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *itemRepository) Update(ctx context.Context, id uint, patch model.ItemUpdate) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
			return err
		}
		patch.Apply(&item)
		ts := model.Stamp(item.CreatedAt, item.UpdatedAt, time.Now().UTC())
		item.UpdatedAt = &ts
		return tx.Save(&item).Error
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

func (r *itemRepository) Delete(ctx context.Context, id uint) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errItemNotFound
		}
		return nil, fmt.Errorf("delete item: %w", err)
	}
	return &item, nil
}
