package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"itemhub/internal/auth"
	"itemhub/internal/errors"
	"itemhub/internal/model"
	"itemhub/internal/repository"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// AuthService handles authentication operations.
type AuthService interface {
	// Authenticate returns the user when the password matches. Unknown users,
	// wrong passwords and inactive users all yield errors.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.Token, error)
	// VerifyToken returns the token subject or errors.ErrUnauthorized.
	VerifyToken(token string) (string, error)
	// LoadPrincipal returns the active user named by a token subject or
	// errors.ErrUnauthorized.
	LoadPrincipal(ctx context.Context, username string) (*model.User, error)
	// Principal combines VerifyToken and LoadPrincipal.
	Principal(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	tokens *auth.JWTService
	log    *zap.Logger

	decoyMu sync.Mutex
	decoy   string
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.JWTService, log *zap.Logger) AuthService {
	s := &authService{users: users, hasher: hasher, tokens: tokens, log: log}
	s.decoyHash()
	return s
}

// decoyHash is compared against when the username is unknown so both
// failure paths cost one bcrypt verification. It is built off any request
// context and retried until it exists.
func (s *authService) decoyHash() string {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()
	if s.decoy == "" {
		h, err := s.hasher.Hash(context.Background(), uuid.NewString())
		if err != nil {
			s.log.Warn("decoy hash", zap.Error(err))
			return ""
		}
		s.decoy = h
	}
	return s.decoy
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			s.hasher.Verify(ctx, password, s.decoyHash())
			return nil, errors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(ctx, password, user.HashedPassword) || !user.IsActive {
		return nil, errors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.Token, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.GenerateAccessToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &model.Token{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

func (s *authService) VerifyToken(token string) (string, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return "", errors.ErrUnauthorized
	}
	return username, nil
}

func (s *authService) Principal(ctx context.Context, token string) (*model.User, error) {
	username, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	return s.LoadPrincipal(ctx, username)
}

func (s *authService) LoadPrincipal(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, errors.ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup principal: %w", err)
	}
	if !user.IsActive {
		return nil, errors.ErrUnauthorized
	}
	return user, nil
}
