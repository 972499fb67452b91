package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"itemhub/internal/db"
	"itemhub/internal/errors"
	"itemhub/internal/model"
)

var (
	errUserNotFound  = errors.Wrap(errors.ErrNotFound, "user not found")
	errUserDuplicate = errors.Wrap(errors.ErrConflict, "username or email already registered")
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository. Uniqueness of username
// and email is enforced by the table's unique indexes.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, r.mapFindErr(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, r.mapFindErr(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, r.mapFindErr(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	users := []model.User{}
	err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.ID = 0
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = nil
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if db.IsDuplicate(err) {
			return errUserDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return err
		}
		patch.Apply(&user)
		ts := model.Stamp(user.CreatedAt, user.UpdatedAt, time.Now().UTC())
		user.UpdatedAt = &ts
		return tx.Save(&user).Error
	})
	if err != nil {
		switch {
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			return nil, errUserNotFound
		case db.IsDuplicate(err):
			return nil, errUserDuplicate
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return nil, r.mapFindErr(err)
	}
	return &user, nil
}

func (r *userRepository) mapFindErr(err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errUserNotFound
	}
	return fmt.Errorf("user query: %w", err)
}
