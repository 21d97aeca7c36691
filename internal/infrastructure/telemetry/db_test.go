package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func TestInstrumentDB_RecordsQueries(t *testing.T) {
	db := openTestDB(t)
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	cfg := DBConfig{Tracing: true, DBName: "sqlite", SlowQuery: time.Hour}
	require.NoError(t, InstrumentDB(db, meter, cfg, zap.NewNop()))

	require.NoError(t, db.Create(&widget{Name: "screen"}).Error)
	var found []widget
	require.NoError(t, db.Find(&found).Error)

	metrics := collect(t, reader)
	require.Contains(t, metrics, "db_query_total")
	sum, ok := metrics["db_query_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.GreaterOrEqual(t, total, int64(2))
	assert.Contains(t, metrics, "db_query_duration_seconds")
	assert.NotContains(t, metrics, "db_slow_query_total")
}

func TestInstrumentDB_SlowQueries(t *testing.T) {
	db := openTestDB(t)
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	core, recorded := observer.New(zapcore.WarnLevel)

	cfg := DBConfig{SlowQuery: time.Nanosecond}
	require.NoError(t, InstrumentDB(db, meter, cfg, zap.New(core)))

	require.NoError(t, db.Create(&widget{Name: "battery"}).Error)

	assert.Contains(t, collect(t, reader), "db_slow_query_total")
	assert.NotZero(t, recorded.FilterMessage("Slow query").Len())
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "SELECT", operationOf("select * from widgets"))
	assert.Equal(t, "OTHER", operationOf("  "))
	assert.Equal(t, "OTHER", operationOf("PRAGMA foreign_keys"))
}

type fixedPool struct {
	stats PoolStats
	err   error
}

func (p fixedPool) Stats() (PoolStats, error) { return p.stats, p.err }

func gaugeValues(t *testing.T, m metricdata.Metrics) map[string]int64 {
	t.Helper()
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok, "%s is not an int64 gauge", m.Name)
	out := make(map[string]int64)
	for _, dp := range gauge.DataPoints {
		state, _ := dp.Attributes.Value(AttrDBState)
		out[state.AsString()] = dp.Value
	}
	return out
}

func TestRegisterPoolMetrics(t *testing.T) {
	t.Run("exports the pool snapshot", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
		pool := fixedPool{stats: PoolStats{
			MaxOpenConnections: 25,
			OpenConnections:    7,
			InUse:              4,
			Idle:               3,
			WaitCount:          12,
			WaitDuration:       1500 * time.Millisecond,
		}}
		require.NoError(t, RegisterPoolMetrics(meter, pool))

		metrics := collect(t, reader)
		require.Contains(t, metrics, "db_pool_connections")
		conns := gaugeValues(t, metrics["db_pool_connections"])
		assert.Equal(t, int64(4), conns["in_use"])
		assert.Equal(t, int64(3), conns["idle"])
		assert.Equal(t, int64(25), gaugeValues(t, metrics["db_pool_connections_max"])[""])

		waits, ok := metrics["db_pool_wait_total"].Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, waits.DataPoints, 1)
		assert.Equal(t, int64(12), waits.DataPoints[0].Value)

		waited, ok := metrics["db_pool_wait_duration_seconds"].Data.(metricdata.Sum[float64])
		require.True(t, ok)
		require.Len(t, waited.DataPoints, 1)
		assert.InDelta(t, 1.5, waited.DataPoints[0].Value, 1e-9)
	})

	t.Run("unreadable pool records nothing", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
		require.NoError(t, RegisterPoolMetrics(meter, fixedPool{err: errors.New("sql: database is closed")}))

		assert.NotContains(t, collect(t, reader), "db_pool_connections")
	})
}
