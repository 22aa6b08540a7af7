package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the payload carried by both access and refresh tokens.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited tokens. Access
// and refresh tokens use independent secrets so one leaking cannot
// forge the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess creates a short-lived access token.
func (s *TokenService) IssueAccess(userID, role string) (string, error) {
	return s.issue(userID, role, s.accessSecret, s.accessTTL)
}

// IssueRefresh creates a long-lived refresh token.
func (s *TokenService) IssueRefresh(userID, role string) (string, error) {
	return s.issue(userID, role, s.refreshSecret, s.refreshTTL)
}

// IssuePair creates a fresh access/refresh token pair.
func (s *TokenService) IssuePair(userID, role string) (accessToken, refreshToken string, err error) {
	accessToken, err = s.IssueAccess(userID, role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.IssueRefresh(userID, role)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *TokenService) issue(userID, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti keeps two tokens issued within the same second
			// distinct, so rotation always produces a new pair.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccess checks an access token's signature and expiry. Expired
// tokens fail with an error matching jwt.ErrTokenExpired.
func (s *TokenService) VerifyAccess(tokenString string) (*TokenClaims, error) {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefresh checks a refresh token's signature and expiry.
func (s *TokenService) VerifyRefresh(tokenString string) (*TokenClaims, error) {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *TokenService) verify(tokenString string, secret []byte) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// AccessTTL reports the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL reports the configured refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}
