package repository

import (
	"context"

	"itemhub/internal/model"
)

// DefaultLimit and MaxLimit bound a page.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ItemRepository defines item persistence operations. Implementations return
// errors.ErrNotFound for missing ids.
type ItemRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Item, error)
	// List returns items in insertion order.
	List(ctx context.Context, offset, limit int) ([]model.Item, error)
	// Create assigns ID and CreatedAt and clears UpdatedAt.
	Create(ctx context.Context, item *model.Item) error
	// Update applies the present fields and stamps UpdatedAt atomically.
	Update(ctx context.Context, id uint, patch model.ItemUpdate) (*model.Item, error)
	// Delete removes the item and returns it as it was.
	Delete(ctx context.Context, id uint) (*model.Item, error)
}

// UserRepository defines user persistence operations. Writes that would
// duplicate a username or email fail with errors.ErrConflict.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id uint) (*model.User, error)
}
