package service

import (
	"context"

	"itemhub/internal/model"
	"itemhub/internal/repository"
)

// ItemService exposes item operations.
type ItemService interface {
	GetItem(ctx context.Context, id uint) (*model.Item, error)
	ListItems(ctx context.Context, skip, limit int) ([]model.Item, error)
	CreateItem(ctx context.Context, in model.ItemCreate) (*model.Item, error)
	UpdateItem(ctx context.Context, id uint, in model.ItemUpdate) (*model.Item, error)
	DeleteItem(ctx context.Context, id uint) (*model.Item, error)
}

type itemService struct {
	repo repository.ItemRepository
}

// NewItemService builds an ItemService.
func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

func (s *itemService) GetItem(ctx context.Context, id uint) (*model.Item, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *itemService) ListItems(ctx context.Context, skip, limit int) ([]model.Item, error) {
	skip, limit, err := normalizePage(skip, limit)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, skip, limit)
}

func (s *itemService) CreateItem(ctx context.Context, in model.ItemCreate) (*model.Item, error) {
	item := in.NewItem()
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) UpdateItem(ctx context.Context, id uint, in model.ItemUpdate) (*model.Item, error) {
	return s.repo.Update(ctx, id, in)
}

func (s *itemService) DeleteItem(ctx context.Context, id uint) (*model.Item, error) {
	return s.repo.Delete(ctx, id)
}
