package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/infrastructure/auth"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"github.com/repairdesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys and headers used by Auth
const (
	PrincipalKey     = "principal"
	AuthHeaderKey    = "Authorization"
	TenantIDHeader   = "X-Tenant-ID"
	UserIDHeader     = "X-User-ID"
	requestIDGinKey  = "request_id"
	authFailedMsgLog = "Authentication failed"
)

// TokenParser validates bearer tokens
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// AuthConfig holds configuration for the Auth middleware
type AuthConfig struct {
	// Parser validates bearer tokens. When nil the caller is taken from the
	// X-Tenant-ID and X-User-ID headers instead.
	Parser TokenParser
	Logger *zap.Logger
}

// Auth resolves the calling tenant and user for every request and stores
// them as an auth.Principal under PrincipalKey.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		var (
			principal auth.Principal
			err       error
		)
		if cfg.Parser != nil {
			header := c.GetHeader(AuthHeaderKey)
			if header == "" {
				err = auth.ErrInvalidToken
			} else {
				principal, err = cfg.Parser.Parse(header)
			}
		} else {
			principal, err = principalFromHeaders(c)
		}
		if err != nil {
			logger.For(c.Request.Context(), cfg.Logger).Warn(authFailedMsgLog,
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			abortUnauthorized(c, err)
			return
		}

		c.Set(PrincipalKey, principal)
		ctx := logger.WithTenantID(c.Request.Context(), principal.TenantID.String())
		ctx = logger.WithUserID(ctx, principal.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func principalFromHeaders(c *gin.Context) (auth.Principal, error) {
	tenantID, err := uuid.Parse(c.GetHeader(TenantIDHeader))
	if err != nil {
		return auth.Principal{}, auth.ErrMissingTenantID
	}
	userID, err := uuid.Parse(c.GetHeader(UserIDHeader))
	if err != nil {
		return auth.Principal{}, auth.ErrMissingUserID
	}
	return auth.Principal{TenantID: tenantID, UserID: userID}, nil
}

func abortUnauthorized(c *gin.Context, err error) {
	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		message = "Token has expired"
	case errors.Is(err, auth.ErrMissingTenantID):
		message = "Tenant ID is missing or invalid"
	case errors.Is(err, auth.ErrMissingUserID):
		message = "User ID is missing or invalid"
	case errors.Is(err, auth.ErrInvalidTokenType):
		message = "Access token required"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.CodeUnauthorized, message, c.GetString(requestIDGinKey)))
}

// GetPrincipal returns the caller resolved by Auth
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
