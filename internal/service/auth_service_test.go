package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"itemhub/internal/auth"
	"itemhub/internal/errors"
	"itemhub/internal/model"
)

func newTestAuth(t *testing.T, repo *MockUserRepository) (AuthService, *auth.JWTService, *auth.Hasher) {
	t.Helper()
	hasher := newTestHasher()
	tokens, err := auth.NewJWTService("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)
	return NewAuthService(repo, hasher, tokens, zap.NewNop()), tokens, hasher
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _, hasher := newTestAuth(t, repo)

	hashed, err := hasher.Hash(context.Background(), "correct")
	require.NoError(t, err)
	alice := &model.User{ID: 1, Username: "alice", HashedPassword: hashed, IsActive: true}
	dormant := &model.User{ID: 2, Username: "dormant", HashedPassword: hashed, IsActive: false}

	repo.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
	repo.On("FindByUsername", mock.Anything, "dormant").Return(dormant, nil)
	repo.On("FindByUsername", mock.Anything, "bob").Return(nil, errors.ErrNotFound)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "correct password", username: "alice", password: "correct"},
		{name: "wrong password", username: "alice", password: "wrong", wantErr: errors.ErrInvalidCredentials},
		{name: "unknown user", username: "bob", password: "anything", wantErr: errors.ErrInvalidCredentials},
		{name: "inactive user", username: "dormant", password: "correct", wantErr: errors.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				// both failure cases surface the exact same error value
				assert.Equal(t, tt.wantErr, err)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
		})
	}
}

func TestAuthService_LoginIssuesVerifiableToken(t *testing.T) {
	repo := new(MockUserRepository)
	svc, tokens, hasher := newTestAuth(t, repo)

	hashed, err := hasher.Hash(context.Background(), "correct")
	require.NoError(t, err)
	repo.On("FindByUsername", mock.Anything, "alice").
		Return(&model.User{ID: 1, Username: "alice", HashedPassword: hashed, IsActive: true}, nil)

	token, err := svc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	subject, err := tokens.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	principal, err := svc.Principal(context.Background(), token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(1), principal.ID)
}

func TestAuthService_Principal_Rejects(t *testing.T) {
	repo := new(MockUserRepository)
	svc, tokens, _ := newTestAuth(t, repo)

	repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, errors.ErrNotFound)
	repo.On("FindByUsername", mock.Anything, "dormant").Return(&model.User{ID: 3, Username: "dormant"}, nil)

	ghost, err := tokens.Issue("ghost", time.Minute)
	require.NoError(t, err)
	dormant, err := tokens.Issue("dormant", time.Minute)
	require.NoError(t, err)
	expired, err := tokens.Issue("alice", 0)
	require.NoError(t, err)

	for _, tok := range []string{ghost, dormant, expired, "garbage"} {
		_, err := svc.Principal(context.Background(), tok)
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
	}
}

func TestAuthService_DecoyIndependentOfRequestContext(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByUsername", mock.Anything, "bob").Return(nil, errors.ErrNotFound)
	svc, _, _ := newTestAuth(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Authenticate(ctx, "bob", "anything")
	assert.Equal(t, errors.ErrInvalidCredentials, err)

	decoy := svc.(*authService).decoyHash()
	require.NotEmpty(t, decoy)
	assert.Equal(t, decoy, svc.(*authService).decoy)
}
