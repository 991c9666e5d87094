package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenConfig holds the secrets and lifetimes of both token kinds.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// UserClaims is the identity carried by every token.
type UserClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Claims is the full signed claim set.
type Claims struct {
	UserClaims
	jwt.StandardClaims
}

// TokenPair is an access token plus the refresh token minted with it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService issues and verifies HS256 access and refresh tokens.
// It performs no I/O.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenService creates a new TokenService. Zero lifetimes fall back to the defaults.
func NewTokenService(cfg TokenConfig) *TokenService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &TokenService{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of s that stamps tokens using now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// IssueTokenPair signs a new access and refresh token for user.
func (s *TokenService) IssueTokenPair(user UserClaims) (TokenPair, error) {
	access, err := s.sign(user, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess parses an access token, returning its claims if valid.
func (s *TokenService) VerifyAccess(token string) (*Claims, error) {
	return s.verify(token, s.cfg.AccessSecret)
}

// VerifyRefresh parses a refresh token, returning its claims if valid.
func (s *TokenService) VerifyRefresh(token string) (*Claims, error) {
	return s.verify(token, s.cfg.RefreshSecret)
}

// Refresh verifies a refresh token and rotates it into a brand-new pair.
func (s *TokenService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return s.IssueTokenPair(claims.UserClaims)
}

// RefreshTTL is the lifetime of refresh tokens.
func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *TokenService) sign(user UserClaims, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserClaims: user,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *TokenService) verify(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExpiresIn is the time left before claims expire, or zero if already expired.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	left := time.Unix(c.ExpiresAt, 0).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
