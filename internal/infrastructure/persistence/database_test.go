package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/infrastructure/config"
	"github.com/repairdesk/backend/internal/infrastructure/persistence/models"
	"github.com/repairdesk/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newMockGormDB opens gorm over sqlmock with the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// openLedgerDB opens an in-memory SQLite ledger database through Open
func openLedgerDB(t *testing.T, cfg config.DatabaseConfig) *Database {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(context.Background(), &cfg, WithDialector(sqlite.Open(dsn)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	t.Run("applies pool limits", func(t *testing.T) {
		db := openLedgerDB(t, config.DatabaseConfig{MaxOpenConns: 3, MaxIdleConns: 2, ConnMaxLifetime: 5})

		require.NoError(t, db.PingContext(context.Background()))
		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 3, stats.MaxOpenConnections)
	})

	t.Run("zero limits keep driver defaults", func(t *testing.T) {
		db := openLedgerDB(t, config.DatabaseConfig{})

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Zero(t, stats.MaxOpenConnections, "zero means unlimited in database/sql")
	})

	t.Run("closed database no longer answers", func(t *testing.T) {
		db := openLedgerDB(t, config.DatabaseConfig{MaxOpenConns: 1})

		require.NoError(t, db.Close())
		assert.Error(t, db.PingContext(context.Background()))
	})
}

func TestDatabase_PingContext(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		db := &Database{DB: gormDB}

		mock.ExpectPing()

		require.NoError(t, db.PingContext(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		db := &Database{DB: gormDB}

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := db.PingContext(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDatabase_Stats(t *testing.T) {
	gormDB, _, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	db := &Database{DB: gormDB}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	assert.Equal(t, time.Duration(0), stats.WaitDuration)
}

func TestDatabase_Close(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	db := &Database{DB: gormDB}

	mock.ExpectClose()

	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
	_ = mockDB
}

func TestDatabase_Instrument(t *testing.T) {
	db := openLedgerDB(t, config.DatabaseConfig{MaxOpenConns: 4})
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	cfg := telemetry.DBConfig{DBName: "sqlite", SlowQuery: time.Hour}
	require.NoError(t, db.Instrument(meter, cfg, zap.NewNop()))
	require.NoError(t, db.DB.AutoMigrate(&models.BranchModel{}))
	require.NoError(t, db.DB.Create(models.NewBranchModel(uuid.New(), "DT01", "Downtown")).Error)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	metrics := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			metrics[m.Name] = m
		}
	}

	assert.Contains(t, metrics, "db_query_total")
	require.Contains(t, metrics, "db_pool_connections_max")
	gauge, ok := metrics["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(4), gauge.DataPoints[0].Value)
	assert.Contains(t, metrics, "db_pool_wait_total")
}

func TestDatabase_Repositories(t *testing.T) {
	db := openLedgerDB(t, config.DatabaseConfig{MaxOpenConns: 1})
	require.NoError(t, db.DB.AutoMigrate(models.AllModels()...))
	f := seedFixture(t, db.DB)

	repos := db.Repositories()
	require.NotNil(t, repos.Directory)
	require.NotNil(t, repos.TradeScope)
	require.NotNil(t, repos.StockScope)
	require.NotNil(t, repos.PurchaseOrders)
	require.NotNil(t, repos.PurchaseReturns)
	require.NotNil(t, repos.StockMovements)

	stocks, err := repos.BranchStock.FindByBranch(context.Background(), f.tenantID, f.branch.ID)
	require.NoError(t, err)
	assert.Empty(t, stocks)
}
