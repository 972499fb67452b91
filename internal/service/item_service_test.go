package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"itemhub/internal/errors"
	"itemhub/internal/model"
)

func TestItemService_ListItems_Paging(t *testing.T) {
	tests := []struct {
		name       string
		skip       int
		limit      int
		wantOffset int
		wantLimit  int
		wantErr    error
	}{
		{name: "defaults", skip: 0, limit: 0, wantOffset: 0, wantLimit: 10},
		{name: "explicit", skip: 10, limit: 10, wantOffset: 10, wantLimit: 10},
		{name: "clamped", skip: 5, limit: 1000, wantOffset: 5, wantLimit: 100},
		{name: "negative skip", skip: -1, limit: 10, wantErr: errors.ErrValidation},
		{name: "negative limit", skip: 0, limit: -3, wantErr: errors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockItemRepository)
			if tt.wantErr == nil {
				repo.On("List", mock.Anything, tt.wantOffset, tt.wantLimit).Return([]model.Item{}, nil)
			}

			items, err := NewItemService(repo).ListItems(context.Background(), tt.skip, tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, items)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestItemService_CreateItem_DefaultsAvailable(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(it *model.Item) bool {
		return it.Name == "Pen" && it.IsAvailable && it.Price == 1.25
	})).Return(nil)

	price := 1.25
	item, err := NewItemService(repo).CreateItem(context.Background(), model.ItemCreate{Name: "Pen", Price: &price})
	require.NoError(t, err)
	assert.True(t, item.IsAvailable)
	repo.AssertExpectations(t)
}

func TestItemService_CreateItem_ExplicitUnavailable(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Item")).Return(nil)

	no := false
	item, err := NewItemService(repo).CreateItem(context.Background(), model.ItemCreate{Name: "Pen", IsAvailable: &no})
	require.NoError(t, err)
	assert.False(t, item.IsAvailable)
}

func TestItemService_NotFoundPassesThrough(t *testing.T) {
	repo := new(MockItemRepository)
	repo.On("FindByID", mock.Anything, uint(9)).Return(nil, errors.ErrNotFound)
	repo.On("Delete", mock.Anything, uint(9)).Return(nil, errors.ErrNotFound)

	svc := NewItemService(repo)
	_, err := svc.GetItem(context.Background(), 9)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = svc.DeleteItem(context.Background(), 9)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	repo.AssertExpectations(t)
}
