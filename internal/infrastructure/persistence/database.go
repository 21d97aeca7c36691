package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/repairdesk/backend/internal/infrastructure/config"
	"github.com/repairdesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the ledger's connection. Every repository and transaction scope
// shares DB, and Stats feeds the connection pool metrics.
type Database struct {
	DB *gorm.DB
}

// Option adjusts how Open connects
type Option func(*openOptions)

type openOptions struct {
	gormLogger logger.Interface
	dialector  gorm.Dialector
}

// WithGormLogger routes SQL logging through l
func WithGormLogger(l logger.Interface) Option {
	return func(o *openOptions) { o.gormLogger = l }
}

// WithDialector connects through d instead of the postgres DSN of the config
func WithDialector(d gorm.Dialector) Option {
	return func(o *openOptions) { o.dialector = d }
}

// Open connects to the ledger database, applies the pool limits of cfg and
// verifies the connection within ctx. Zero limits keep the driver defaults.
func Open(ctx context.Context, cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	o := openOptions{gormLogger: logger.Default.LogMode(logger.Silent)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialector == nil {
		o.dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(o.dialector, &gorm.Config{
		Logger:                 o.gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	d := &Database{DB: db}

	sqlDB, err := d.sqlDB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

func (d *Database) sqlDB() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB, nil
}

// PingContext checks that the database answers. It backs the health endpoint.
func (d *Database) PingContext(ctx context.Context) error {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats returns a snapshot of the connection pool
func (d *Database) Stats() (telemetry.PoolStats, error) {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return telemetry.PoolStats{}, err
	}
	stats := sqlDB.Stats()
	return telemetry.PoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// Instrument registers query tracing and metrics and exports the pool statistics
func (d *Database) Instrument(meter metric.Meter, cfg telemetry.DBConfig, log *zap.Logger) error {
	if err := telemetry.InstrumentDB(d.DB, meter, cfg, log); err != nil {
		return err
	}
	return telemetry.RegisterPoolMetrics(meter, d)
}

// Repositories are the ledger's repositories and transaction scopes over one connection
type Repositories struct {
	Directory       *GormDirectory
	TradeScope      *GormTransactionScope
	StockScope      *GormStockTransactionScope
	PurchaseOrders  *GormPurchaseOrderRepository
	PurchaseReturns *GormPurchaseReturnRepository
	BranchStock     *GormBranchStockRepository
	StockMovements  *GormStockMovementRepository
}

// Repositories builds the ledger's repositories on this connection
func (d *Database) Repositories() Repositories {
	return Repositories{
		Directory:       NewGormDirectory(d.DB),
		TradeScope:      NewGormTransactionScope(d.DB),
		StockScope:      NewGormStockTransactionScope(d.DB),
		PurchaseOrders:  NewGormPurchaseOrderRepository(d.DB),
		PurchaseReturns: NewGormPurchaseReturnRepository(d.DB),
		BranchStock:     NewGormBranchStockRepository(d.DB),
		StockMovements:  NewGormStockMovementRepository(d.DB),
	}
}
