package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cafe/internal/models"
	"cafe/internal/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthOptions tunes AuthService.
type AuthOptions struct {
	BcryptCost int
	// SingleUseRefresh revokes a refresh token once it has been rotated.
	SingleUseRefresh bool
}

// AuthService handles accounts, credentials and token sessions.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
	tokens    *TokenService
	opts      AuthOptions
	log       *logrus.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository, tokens *TokenService, opts AuthOptions, logger *logrus.Logger) *AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokens:    tokens,
		opts:      opts,
		log:       logger,
		now:       time.Now,
	}
}

// CreateUser registers a new account. The email is stored as given.
func (s *AuthService) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Field: "general", Message: "All fields are required"}
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storageError("find user by email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, storageError("create user", err)
	}
	s.log.WithField("user_id", user.ID).Info("User account created")
	return user, nil
}

// FindByEmail looks a user up by email.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, userLookupError("find user by email", err)
	}
	return user, nil
}

// FindByID looks a user up by id.
func (s *AuthService) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError("find user by id", err)
	}
	return user, nil
}

// VerifyPassword compares a raw password with a stored bcrypt hash.
func (s *AuthService) VerifyPassword(rawPassword, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(rawPassword)) == nil
}

// Login authenticates by email and password and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, TokenPair{}, &CredentialsError{Field: "email"}
		}
		return nil, TokenPair{}, err
	}
	if !s.VerifyPassword(password, user.PasswordHash) {
		return nil, TokenPair{}, &CredentialsError{Field: "password"}
	}

	pair, err := s.IssueTokens(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// IssueTokens mints a token pair for user.
func (s *AuthService) IssueTokens(user *models.User) (TokenPair, error) {
	return s.tokens.IssueTokenPair(UserClaims{ID: user.ID, Email: user.Email})
}

// Refresh rotates a refresh token into a new pair. Revoked tokens are rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.Id)
	if err != nil {
		return TokenPair{}, storageError("check refresh token", err)
	}
	if revoked {
		s.log.WithField("user_id", claims.ID).Warn("Rejected revoked refresh token")
		return TokenPair{}, ErrInvalidToken
	}

	if s.opts.SingleUseRefresh {
		if err := s.tokenRepo.Revoke(ctx, claims.Id, claims.ExpiresIn(s.now())); err != nil {
			return TokenPair{}, storageError("revoke refresh token", err)
		}
	}
	return s.tokens.IssueTokenPair(claims.UserClaims)
}

// Logout ends a session. A supplied refresh token that verifies is revoked
// until its natural expiry; the access token stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, user *Claims, refreshToken string) error {
	if refreshToken != "" {
		claims, err := s.tokens.VerifyRefresh(refreshToken)
		if err != nil {
			s.log.WithField("user_id", user.ID).Debug("Logout with unverifiable refresh token")
		} else if claims.ID == user.ID {
			if err := s.tokenRepo.Revoke(ctx, claims.Id, claims.ExpiresIn(s.now())); err != nil {
				return storageError("revoke refresh token", err)
			}
		}
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "at": s.now().UTC().Format(time.RFC3339)}).Info("User logged out")
	return nil
}
