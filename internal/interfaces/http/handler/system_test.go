package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/repairdesk/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func serveSystem(t *testing.T, fn gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	body, _ := resp.Data.(map[string]any)
	return w, body
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		w, body := serveSystem(t, NewSystemHandler("repairdesk", "1.2.0", stubPinger{}).Health)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "ok", body["database"])
	})

	t.Run("database down", func(t *testing.T) {
		w, body := serveSystem(t, NewSystemHandler("repairdesk", "1.2.0", stubPinger{err: errors.New("refused")}).Health)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "unreachable", body["database"])
	})

	t.Run("no database", func(t *testing.T) {
		w, body := serveSystem(t, NewSystemHandler("repairdesk", "1.2.0", nil).Health)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "not configured", body["database"])
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	w, body := serveSystem(t, NewSystemHandler("repairdesk", "1.2.0", nil).GetSystemInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "repairdesk", body["name"])
	assert.Equal(t, "1.2.0", body["version"])
	assert.NotEmpty(t, body["go_version"])
	assert.NotEmpty(t, body["uptime"])
}
