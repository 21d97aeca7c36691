package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinv "github.com/repairdesk/backend/internal/application/inventory"
	apptrade "github.com/repairdesk/backend/internal/application/trade"
	"github.com/repairdesk/backend/internal/infrastructure/persistence"
	"github.com/repairdesk/backend/internal/infrastructure/persistence/models"
	"github.com/repairdesk/backend/internal/interfaces/http/dto"
	"github.com/repairdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// testEnv is a router over real services on a private SQLite database
type testEnv struct {
	router   *gin.Engine
	tenantID uuid.UUID
	userID   uuid.UUID
	branch   *models.BranchModel
	supplier *models.SupplierModel
	item     *models.ItemModel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	env := &testEnv{tenantID: uuid.New(), userID: uuid.New()}
	legacyID := uuid.New()
	env.branch = models.NewBranchModel(env.tenantID, "DT01", "Downtown")
	env.supplier = models.NewSupplierModel(env.tenantID, "SUP-1", "Parts Co")
	env.item = models.NewItemModel(env.tenantID, "SCR-IP13", "iPhone 13 screen", &legacyID)
	for _, row := range []any{env.branch, env.supplier, env.item} {
		require.NoError(t, db.Create(row).Error)
	}

	directory := persistence.NewGormDirectory(db)
	scope := persistence.NewGormTransactionScope(db)
	orders := NewPurchaseOrderHandler(apptrade.NewPurchaseOrderService(scope,
		persistence.NewGormPurchaseOrderRepository(db), directory, zap.NewNop()))
	returns := NewPurchaseReturnHandler(apptrade.NewPurchaseReturnService(scope,
		persistence.NewGormPurchaseReturnRepository(db), directory, zap.NewNop()))
	stock := NewStockHandler(appinv.NewStockLedgerService(persistence.NewGormStockTransactionScope(db),
		persistence.NewGormBranchStockRepository(db), persistence.NewGormStockMovementRepository(db), directory, zap.NewNop()))

	r := gin.New()
	api := r.Group("/api/v1", middleware.Auth(middleware.AuthConfig{}))
	api.POST("/purchase-orders", orders.Create)
	api.GET("/purchase-orders", orders.List)
	api.GET("/purchase-orders/status-summary", orders.StatusSummary)
	api.GET("/purchase-orders/:id", orders.GetByID)
	api.PUT("/purchase-orders/:id", orders.Update)
	api.PUT("/purchase-orders/:id/status", orders.UpdateStatus)
	api.POST("/purchase-orders/:id/receive", orders.Receive)
	api.POST("/purchase-orders/:id/payments", orders.RecordPayment)
	api.GET("/purchase-orders/:id/payments", orders.ListPayments)
	api.POST("/purchase-orders/:id/cancel", orders.Cancel)
	api.DELETE("/purchase-orders/:id", orders.Delete)
	api.GET("/suppliers/summary", orders.SupplierSummary)
	api.GET("/suppliers/:id/outstanding", orders.SupplierOutstanding)
	api.POST("/purchase-returns", returns.Create)
	api.GET("/purchase-returns", returns.List)
	api.GET("/purchase-returns/:id", returns.GetByID)
	api.POST("/purchase-returns/:id/confirm", returns.Confirm)
	api.POST("/purchase-returns/:id/reject", returns.Reject)
	api.POST("/purchase-returns/:id/refund", returns.ProcessRefund)
	api.GET("/stock", stock.Get)
	api.GET("/stock/movements", stock.ListMovements)
	api.GET("/stock/verify", stock.Verify)
	api.POST("/stock/adjustments", stock.Adjust)
	env.router = r
	return env
}

// do sends a request as the env's tenant and decodes the standard envelope
func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantIDHeader, e.tenantID.String())
	req.Header.Set(middleware.UserIDHeader, e.userID.String())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// data re-decodes the envelope's data into out
func data(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// createOrder posts a one-line order of 10 @ 5.00 with 10% tax
func (e *testEnv) createOrder(t *testing.T) apptrade.PurchaseOrderResponse {
	t.Helper()
	w, resp := e.do(t, http.MethodPost, "/api/v1/purchase-orders", gin.H{
		"supplier_id": e.supplier.ID,
		"branch_id":   e.branch.ID,
		"lines": []gin.H{{
			"item_id":    e.item.ID,
			"quantity":   "10",
			"unit_price": "5",
			"tax_rate":   "10",
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order apptrade.PurchaseOrderResponse
	data(t, resp, &order)
	return order
}
