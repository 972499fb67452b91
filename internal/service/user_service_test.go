package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"itemhub/internal/auth"
	"itemhub/internal/errors"
	"itemhub/internal/model"
)

func newTestHasher() *auth.Hasher {
	return auth.NewHasher(bcrypt.MinCost, 2)
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestUserService_CreateUser(t *testing.T) {
	tests := []struct {
		name      string
		actor     *model.User
		in        model.UserCreate
		setupMock func(*MockUserRepository)
		wantErr   error
	}{
		{
			name: "successful registration",
			in:   model.UserCreate{Username: "alice", Email: "alice@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, errors.ErrNotFound)
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, errors.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name: "username taken",
			in:   model.UserCreate{Username: "alice", Email: "new@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{ID: 1, Username: "alice"}, nil)
			},
			wantErr: errors.ErrConflict,
		},
		{
			name: "email taken",
			in:   model.UserCreate{Username: "bob", Email: "alice@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "bob").Return(nil, errors.ErrNotFound)
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{ID: 1}, nil)
			},
			wantErr: errors.ErrConflict,
		},
		{
			name: "lost race at the store",
			in:   model.UserCreate{Username: "alice", Email: "alice@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, errors.ErrNotFound)
				m.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, errors.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(errors.ErrConflict)
			},
			wantErr: errors.ErrConflict,
		},
		{
			name:      "anonymous cannot self-promote",
			in:        model.UserCreate{Username: "eve", Email: "eve@example.com", Password: "password123", IsSuperuser: boolPtr(true)},
			setupMock: func(*MockUserRepository) {},
			wantErr:   errors.ErrForbidden,
		},
		{
			name:  "superuser may create superuser",
			actor: &model.User{ID: 1, IsSuperuser: true},
			in:    model.UserCreate{Username: "root2", Email: "root2@example.com", Password: "password123", IsSuperuser: boolPtr(true)},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "root2").Return(nil, errors.ErrNotFound)
				m.On("FindByEmail", mock.Anything, "root2@example.com").Return(nil, errors.ErrNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool { return u.IsSuperuser })).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			hasher := newTestHasher()

			svc := NewUserService(repo, hasher, zap.NewNop())
			user, err := svc.CreateUser(context.Background(), tt.actor, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.in.Username, user.Username)
				assert.True(t, user.IsActive)
				assert.NotEqual(t, tt.in.Password, user.HashedPassword)
				assert.True(t, hasher.Verify(context.Background(), tt.in.Password, user.HashedPassword))
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateUser_Authorization(t *testing.T) {
	owner := &model.User{ID: 2, Username: "bob"}
	admin := &model.User{ID: 1, Username: "root", IsSuperuser: true}

	tests := []struct {
		name    string
		actor   *model.User
		target  uint
		in      model.UserUpdate
		allowed bool
	}{
		{name: "self", actor: owner, target: 2, in: model.UserUpdate{FullName: model.Some("Bob")}, allowed: true},
		{name: "admin on other", actor: admin, target: 2, in: model.UserUpdate{FullName: model.Some("Bob")}, allowed: true},
		{name: "other user", actor: owner, target: 3, in: model.UserUpdate{FullName: model.Some("Mallory")}},
		{name: "anonymous", actor: nil, target: 2, in: model.UserUpdate{FullName: model.Some("x")}},
		{name: "self promotion", actor: owner, target: 2, in: model.UserUpdate{IsSuperuser: boolPtr(true)}},
		{name: "admin promotes", actor: admin, target: 2, in: model.UserUpdate{IsSuperuser: boolPtr(true)}, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.allowed {
				repo.On("Update", mock.Anything, tt.target, mock.AnythingOfType("model.UserPatch")).
					Return(&model.User{ID: tt.target}, nil)
			}

			_, err := NewUserService(repo, newTestHasher(), zap.NewNop()).UpdateUser(context.Background(), tt.actor, tt.target, tt.in)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errors.ErrForbidden)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateUser_HashesPassword(t *testing.T) {
	repo := new(MockUserRepository)
	hasher := newTestHasher()
	var captured model.UserPatch
	repo.On("Update", mock.Anything, uint(2), mock.AnythingOfType("model.UserPatch")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(model.UserPatch) }).
		Return(&model.User{ID: 2}, nil)

	actor := &model.User{ID: 2}
	_, err := NewUserService(repo, hasher, zap.NewNop()).UpdateUser(context.Background(), actor, 2, model.UserUpdate{Password: strPtr("new-password")})
	require.NoError(t, err)
	require.NotNil(t, captured.HashedPassword)
	assert.NotEqual(t, "new-password", *captured.HashedPassword)
	assert.True(t, hasher.Verify(context.Background(), "new-password", *captured.HashedPassword))
	assert.Nil(t, captured.Username)
}

func TestUserService_DeleteUser(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Delete", mock.Anything, uint(2)).Return(&model.User{ID: 2}, nil).Once()
	repo.On("Delete", mock.Anything, uint(2)).Return(nil, errors.ErrNotFound).Once()
	svc := NewUserService(repo, newTestHasher(), zap.NewNop())
	self := &model.User{ID: 2}

	_, err := svc.DeleteUser(context.Background(), self, 2)
	assert.NoError(t, err)
	_, err = svc.DeleteUser(context.Background(), self, 2)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = svc.DeleteUser(context.Background(), self, 5)
	assert.ErrorIs(t, err, errors.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestCanModify(t *testing.T) {
	assert.True(t, CanModify(&model.User{ID: 4}, 4))
	assert.True(t, CanModify(&model.User{ID: 1, IsSuperuser: true}, 4))
	assert.False(t, CanModify(&model.User{ID: 1}, 4))
	assert.False(t, CanModify(nil, 4))
}
