package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestAPI_Mount(t *testing.T) {
	t.Run("version prefix", func(t *testing.T) {
		engine := gin.New()
		NewAPI("v2").Add(Resource{Prefix: "/stock", Routes: []Route{
			get("/verify", func(c *gin.Context) { c.String(http.StatusOK, "verified") }),
		}}).Mount(engine)

		w := serve(engine, http.MethodGet, "/api/v2/stock/verify")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "verified", w.Body.String())
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/stock/verify").Code)
	})

	t.Run("methods", func(t *testing.T) {
		engine := gin.New()
		NewAPI("v1").Add(Resource{Prefix: "/purchase-orders", Routes: []Route{
			get("", ok),
			post("", ok),
			put("/:id", ok),
			del("/:id", ok),
		}}).Mount(engine)

		for _, tt := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/purchase-orders"},
			{http.MethodPost, "/api/v1/purchase-orders"},
			{http.MethodPut, "/api/v1/purchase-orders/1"},
			{http.MethodDelete, "/api/v1/purchase-orders/1"},
		} {
			assert.Equal(t, http.StatusOK, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("api middleware stays under the prefix", func(t *testing.T) {
		engine := gin.New()
		engine.GET("/outside", ok)
		NewAPI("v1").
			Use(func(c *gin.Context) {
				c.Header("X-Api", "1")
				c.Next()
			}).
			Add(Resource{Prefix: "/stock", Routes: []Route{get("", ok)}}).
			Mount(engine)

		assert.Equal(t, "1", serve(engine, http.MethodGet, "/api/v1/stock").Header().Get("X-Api"))
		assert.Empty(t, serve(engine, http.MethodGet, "/outside").Header().Get("X-Api"))
	})

	t.Run("idempotency runs only on idempotent routes", func(t *testing.T) {
		engine := gin.New()
		NewAPI("v1").
			WithIdempotency(func(c *gin.Context) {
				c.Header("X-Idempotent", "1")
				c.Next()
			}).
			Add(Resource{Prefix: "/purchase-orders", Routes: []Route{
				post("/:id/receive", ok).Once(),
				post("/:id/cancel", ok),
			}}).
			Mount(engine)

		assert.Equal(t, "1", serve(engine, http.MethodPost, "/api/v1/purchase-orders/1/receive").Header().Get("X-Idempotent"))
		assert.Empty(t, serve(engine, http.MethodPost, "/api/v1/purchase-orders/1/cancel").Header().Get("X-Idempotent"))
	})

	t.Run("idempotent routes still mount without the middleware", func(t *testing.T) {
		engine := gin.New()
		NewAPI("v1").Add(Resource{Prefix: "/stock", Routes: []Route{
			post("/adjustments", ok).Once(),
		}}).Mount(engine)

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/v1/stock/adjustments").Code)
	})
}

func TestAPI_Routes(t *testing.T) {
	api := NewAPI("v1").Add(
		Resource{Prefix: "/purchase-returns", Routes: []Route{post("/:id/refund", ok).Once()}},
		Resource{Prefix: "/system", Routes: []Route{get("/info", ok)}},
	)

	assert.Equal(t, "/api/v1", api.BasePath())
	routes := api.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/api/v1/purchase-returns/:id/refund", routes[0].Path)
	assert.True(t, routes[0].Idempotent)
	assert.Equal(t, "/api/v1/system/info", routes[1].Path)
	assert.False(t, routes[1].Idempotent)
}
