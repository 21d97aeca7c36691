package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/infrastructure/config"
)

// TokenTypeAccess is the only token type accepted by the ledger API
const TokenTypeAccess = "access"

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the access token claims issued by the identity service
type Claims struct {
	jwt.RegisteredClaims
	TenantID    string   `json:"tenant_id"`
	UserID      string   `json:"user_id"`
	Username    string   `json:"username,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	TokenType   string   `json:"token_type,omitempty"`
}

// Principal is the authenticated caller of a request
type Principal struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	Username    string
	Permissions []string
}

// HasPermission reports whether the principal was granted permission
func (p Principal) HasPermission(permission string) bool {
	for _, granted := range p.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// TokenParser validates HS256 access tokens
type TokenParser struct {
	secret []byte
	issuer string
}

// NewTokenParser creates a parser for cfg. An empty issuer disables the issuer check.
func NewTokenParser(cfg config.JWTConfig) *TokenParser {
	return &TokenParser{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Parse validates tokenString and returns the caller it identifies.
// A leading "Bearer " is stripped.
func (p *TokenParser) Parse(tokenString string) (Principal, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return Principal{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Principal{}, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return Principal{}, ErrTokenNotYetValid
	case err != nil:
		return Principal{}, ErrInvalidToken
	}

	if claims.TokenType != "" && claims.TokenType != TokenTypeAccess {
		return Principal{}, ErrInvalidTokenType
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return Principal{}, ErrMissingTenantID
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, ErrMissingUserID
	}

	return Principal{
		TenantID:    tenantID,
		UserID:      userID,
		Username:    claims.Username,
		Permissions: claims.Permissions,
	}, nil
}
