package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/repairdesk/backend/docs"
	inventoryapp "github.com/repairdesk/backend/internal/application/inventory"
	tradeapp "github.com/repairdesk/backend/internal/application/trade"
	"github.com/repairdesk/backend/internal/infrastructure/auth"
	"github.com/repairdesk/backend/internal/infrastructure/cache"
	"github.com/repairdesk/backend/internal/infrastructure/config"
	"github.com/repairdesk/backend/internal/infrastructure/event"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"github.com/repairdesk/backend/internal/infrastructure/persistence"
	"github.com/repairdesk/backend/internal/infrastructure/telemetry"
	"github.com/repairdesk/backend/internal/interfaces/http/handler"
	"github.com/repairdesk/backend/internal/interfaces/http/middleware"
	"github.com/repairdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			RepairDesk Purchasing and Stock Ledger API
//	@version		1.0
//	@description	Purchase orders, goods receipt, supplier payments, purchase returns and the branch stock ledger of a multi-tenant repair shop.
//	@contact.name	RepairDesk Platform Team
//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html
//	@host		localhost:8080
//	@BasePath	/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	otel, err := telemetry.Setup(ctx, cfg.Telemetry, version, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := otel.Tee(baseLog)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting RepairDesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	dbTelemetry := telemetry.DefaultDBConfig()
	dbTelemetry.DBName = cfg.Database.DBName
	dbTelemetry.Tracing = otel.Enabled()
	dbTelemetry.IncludeQueryVars = !cfg.IsProduction()

	gormLog := logger.NewGormLogger(log, logger.ParseGormLevel(cfg.Log.GormLevel), dbTelemetry.SlowQuery)
	db, err := persistence.Open(ctx, &cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Instrument(otel.Meter(), dbTelemetry, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	repos := db.Repositories()

	// Committed ledger changes are announced in-process
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLedgerAuditHandler(log))

	ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  otel.Meter(),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	purchaseOrderService := tradeapp.NewPurchaseOrderService(repos.TradeScope, repos.PurchaseOrders, repos.Directory, log)
	purchaseOrderService.SetEventPublisher(eventBus)
	purchaseOrderService.SetMetrics(ledgerMetrics)

	purchaseReturnService := tradeapp.NewPurchaseReturnService(repos.TradeScope, repos.PurchaseReturns, repos.Directory, log)
	purchaseReturnService.SetEventPublisher(eventBus)
	purchaseReturnService.SetMetrics(ledgerMetrics)

	stockLedgerService := inventoryapp.NewStockLedgerService(repos.StockScope, repos.BranchStock, repos.StockMovements, repos.Directory, log)
	stockLedgerService.SetEventPublisher(eventBus)
	stockLedgerService.SetMetrics(ledgerMetrics)

	// Idempotency keys are shared across instances through Redis when configured
	idempotency := middleware.IdempotencyConfig{TTL: cfg.Idempotency.TTL, Logger: log}
	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.IsProduction()),
		).CreateStore(ctx)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("Error closing idempotency store", zap.Error(err))
			}
		}()
		idempotency.Store = store
	}

	authConfig := middleware.AuthConfig{Logger: log}
	if cfg.JWT.Enabled {
		authConfig.Parser = auth.NewTokenParser(cfg.JWT)
	} else {
		log.Warn("JWT authentication disabled, trusting X-Tenant-ID and X-User-ID headers")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	routerConfig := router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Auth:           authConfig,
		Idempotency:    idempotency,
		Tracing:        otel.Enabled(),
		Swagger:        !cfg.IsProduction(),
		Logger:         log,
	}
	if otel.Enabled() {
		routerConfig.Meter = otel.Meter()
	}
	engine, err := router.NewEngine(routerConfig, router.Handlers{
		PurchaseOrders:  handler.NewPurchaseOrderHandler(purchaseOrderService),
		PurchaseReturns: handler.NewPurchaseReturnHandler(purchaseReturnService),
		Stock:           handler.NewStockHandler(stockLedgerService),
		System:          handler.NewSystemHandler(cfg.App.Name, version, db),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := otel.Shutdown(shutdownCtx); err != nil {
		baseLog.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
