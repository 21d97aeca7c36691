package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/infrastructure/auth"
	"github.com/repairdesk/backend/internal/infrastructure/config"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret-32-bytes!!"

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(cfg AuthConfig) *gin.Engine {
	r := gin.New()
	r.Use(Auth(cfg))
	r.GET("/who", func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tenant": p.TenantID.String(),
			"user":   p.UserID.String(),
			"ctx":    logger.TenantID(c.Request.Context()),
		})
	})
	return r
}

func bearer(t *testing.T, tenantID, userID uuid.UUID) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		TenantID:         tenantID.String(),
		UserID:           userID.String(),
		TokenType:        auth.TokenTypeAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuth_Token(t *testing.T) {
	r := authRouter(AuthConfig{Parser: auth.NewTokenParser(config.JWTConfig{Secret: testSecret})})
	tenantID, userID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(AuthHeaderKey, bearer(t, tenantID, userID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tenant":"`+tenantID.String()+`","user":"`+userID.String()+`","ctx":"`+tenantID.String()+`"}`, w.Body.String())
}

func TestAuth_TokenRequired(t *testing.T) {
	r := authRouter(AuthConfig{Parser: auth.NewTokenParser(config.JWTConfig{Secret: testSecret})})

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(TenantIDHeader, uuid.NewString())
	req.Header.Set(UserIDHeader, uuid.NewString())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
}

func TestAuth_HeaderFallback(t *testing.T) {
	r := authRouter(AuthConfig{})
	tenantID, userID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(TenantIDHeader, tenantID.String())
	req.Header.Set(UserIDHeader, userID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tenantID.String())

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(TenantIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Tenant ID is missing or invalid")
}
