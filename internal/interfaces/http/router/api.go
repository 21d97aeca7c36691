package router

import (
	"github.com/gin-gonic/gin"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"github.com/repairdesk/backend/internal/interfaces/http/handler"
	"github.com/repairdesk/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers the API serves
type Handlers struct {
	PurchaseOrders  *handler.PurchaseOrderHandler
	PurchaseReturns *handler.PurchaseReturnHandler
	Stock           *handler.StockHandler
	System          *handler.SystemHandler
}

// Config configures the engine's middleware stack
type Config struct {
	ServiceName    string
	TrustedProxies []string
	// BodyLimit caps request bodies; zero uses the middleware default
	BodyLimit   int64
	Auth        middleware.AuthConfig
	Idempotency middleware.IdempotencyConfig
	// Meter enables HTTP metrics when set
	Meter metric.Meter
	// Tracing wraps every request in a server span
	Tracing bool
	// Swagger serves the API documentation under /swagger
	Swagger bool
	Logger  *zap.Logger
}

// NewEngine builds the gin engine with the middleware stack and every API route.
//
// Middleware order: request logger, recovery, tracing, security headers, body
// limit and metrics apply to every request; authentication applies to /api/v1.
// Stock-moving and money-moving POSTs additionally honour Idempotency-Key.
func NewEngine(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(logger.GinMiddleware(log), logger.Recovery(log))
	if cfg.Tracing {
		engine.Use(middleware.Tracing(cfg.ServiceName)...)
	}
	bodyLimit := cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = middleware.DefaultBodyLimit
	}
	engine.Use(middleware.SecureHeaders(), middleware.BodyLimit(bodyLimit))
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	if cfg.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Auth.Logger == nil {
		cfg.Auth.Logger = log
	}
	if cfg.Idempotency.Logger == nil {
		cfg.Idempotency.Logger = log
	}
	api := ledgerAPI(h).
		Use(middleware.Auth(cfg.Auth)).
		WithIdempotency(middleware.Idempotency(cfg.Idempotency))
	api.Mount(engine)
	log.Debug("API routes mounted",
		zap.String("base_path", api.BasePath()),
		zap.Int("routes", len(api.Routes())),
	)
	return engine, nil
}

// ledgerAPI lays out the /api/v1 resources for the handlers that are set
func ledgerAPI(h Handlers) *API {
	api := NewAPI("v1")

	if po := h.PurchaseOrders; po != nil {
		api.Add(Resource{Prefix: "/purchase-orders", Routes: []Route{
			post("", po.Create),
			get("", po.List),
			get("/status-summary", po.StatusSummary),
			get("/:id", po.GetByID),
			put("/:id", po.Update),
			del("/:id", po.Delete),
			put("/:id/status", po.UpdateStatus),
			post("/:id/receive", po.Receive).Once(),
			post("/:id/payments", po.RecordPayment).Once(),
			get("/:id/payments", po.ListPayments),
			post("/:id/cancel", po.Cancel),
		}}, Resource{Prefix: "/suppliers", Routes: []Route{
			get("/summary", po.SupplierSummary),
			get("/:id/outstanding", po.SupplierOutstanding),
		}})
	}

	if pr := h.PurchaseReturns; pr != nil {
		api.Add(Resource{Prefix: "/purchase-returns", Routes: []Route{
			post("", pr.Create),
			get("", pr.List),
			get("/:id", pr.GetByID),
			post("/:id/confirm", pr.Confirm),
			post("/:id/reject", pr.Reject),
			post("/:id/refund", pr.ProcessRefund).Once(),
		}})
	}

	if st := h.Stock; st != nil {
		api.Add(Resource{Prefix: "/stock", Routes: []Route{
			get("", st.Get),
			get("/movements", st.ListMovements),
			get("/verify", st.Verify),
			post("/adjustments", st.Adjust).Once(),
		}})
	}

	if h.System != nil {
		api.Add(Resource{Prefix: "/system", Routes: []Route{
			get("/info", h.System.GetSystemInfo),
		}})
	}

	return api
}
