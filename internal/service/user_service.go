package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"itemhub/internal/auth"
	"itemhub/internal/errors"
	"itemhub/internal/model"
	"itemhub/internal/repository"
)

// SystemActor stands in for the operator when the CLI manages users.
var SystemActor = &model.User{Username: "system", IsSuperuser: true, IsActive: true}

var (
	errUsernameTaken = errors.Wrap(errors.ErrConflict, "username already registered")
	errEmailTaken    = errors.Wrap(errors.ErrConflict, "email already registered")
)

// UserService exposes user operations. actor is the authenticated principal,
// or nil for anonymous registration.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]model.User, error)
	CreateUser(ctx context.Context, actor *model.User, in model.UserCreate) (*model.User, error)
	UpdateUser(ctx context.Context, actor *model.User, id uint, in model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, actor *model.User, id uint) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher *auth.Hasher
	log    *zap.Logger
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, hasher *auth.Hasher, log *zap.Logger) UserService {
	return &userService{repo: repo, hasher: hasher, log: log}
}

// CanModify implements the self-or-admin rule.
func CanModify(actor *model.User, targetID uint) bool {
	return actor != nil && (actor.IsSuperuser || actor.ID == targetID)
}

func isSuperuser(actor *model.User) bool {
	return actor != nil && actor.IsSuperuser
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context, skip, limit int) ([]model.User, error) {
	skip, limit, err := normalizePage(skip, limit)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, skip, limit)
}

func (s *userService) CreateUser(ctx context.Context, actor *model.User, in model.UserCreate) (*model.User, error) {
	if in.Privileged() && !isSuperuser(actor) {
		return nil, errors.ErrForbidden
	}

	// Friendly messages for the common case; the store still enforces
	// uniqueness atomically.
	if err := s.ensureAbsent(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}
	user := in.NewUser(hashed)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *userService) ensureAbsent(ctx context.Context, username, email string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return errUsernameTaken
	} else if !stderrors.Is(err, errors.ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return errEmailTaken
	} else if !stderrors.Is(err, errors.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *model.User, id uint, in model.UserUpdate) (*model.User, error) {
	if !CanModify(actor, id) {
		return nil, errors.ErrForbidden
	}
	if in.Privileged() && !isSuperuser(actor) {
		return nil, errors.ErrForbidden
	}

	patch := model.UserPatch{
		Username:    in.Username,
		Email:       in.Email,
		FullName:    in.FullName,
		IsActive:    in.IsActive,
		IsSuperuser: in.IsSuperuser,
	}
	if in.Password != nil {
		hashed, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			return nil, err
		}
		patch.HashedPassword = &hashed
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *userService) DeleteUser(ctx context.Context, actor *model.User, id uint) (*model.User, error) {
	if !CanModify(actor, id) {
		return nil, errors.ErrForbidden
	}
	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("user deleted", zap.Uint("user_id", id), zap.Uint("by", actor.ID))
	return user, nil
}
