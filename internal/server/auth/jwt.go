// Package auth mints and parses the service's signed tokens and hashes
// passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeRefresh marks refresh tokens. Access tokens carry no type.
const TokenTypeRefresh = "refresh"

// Claims are the registered claims plus the account id and an optional
// token type discriminator.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Type   string `json:"type,omitempty"`
}

// TokenIssuer signs access and refresh tokens with distinct secrets.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, issuer string) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
		now:           time.Now,
	}
}

// IssueAccessToken returns a short-lived token for userID.
func (i *TokenIssuer) IssueAccessToken(userID string) (string, error) {
	return GenerateToken(userID, "", i.accessSecret, i.issuer, i.now(), i.accessTTL)
}

// IssueRefreshToken returns a long-lived token for userID marked as refresh.
func (i *TokenIssuer) IssueRefreshToken(userID string) (string, error) {
	return GenerateToken(userID, TokenTypeRefresh, i.refreshSecret, i.issuer, i.now(), i.refreshTTL)
}

// ParseAccessToken validates an access token and returns its account id.
// Refresh tokens are rejected even if they were signed with the access secret.
func (i *TokenIssuer) ParseAccessToken(token string) (string, error) {
	claims, err := ParseToken(token, i.accessSecret, i.issuer)
	if err != nil {
		return "", err
	}
	if claims.Type != "" {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

// ParseRefreshToken validates a refresh token and returns its account id.
func (i *TokenIssuer) ParseRefreshToken(token string) (string, error) {
	claims, err := ParseToken(token, i.refreshSecret, i.issuer)
	if err != nil {
		return "", err
	}
	if claims.Type != TokenTypeRefresh {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

// GenerateToken signs an HS256 token whose subject is userID.
func GenerateToken(userID, tokenType string, secret []byte, issuer string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UserID: userID,
		Type:   tokenType,
	})
	return token.SignedString(secret)
}

// ParseToken verifies signature, algorithm, expiry and issuer. Expired
// tokens yield common.ErrTokenExpired; every other failure yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secret []byte, issuer string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
