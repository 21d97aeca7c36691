package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls database instrumentation
type DBConfig struct {
	// Tracing registers otelgorm so each statement becomes a span
	Tracing bool
	// IncludeQueryVars puts bound values into span statements. Keep off outside development.
	IncludeQueryVars bool
	DBName           string
	SlowQuery        time.Duration
}

// DefaultDBConfig returns the production defaults
func DefaultDBConfig() DBConfig {
	return DBConfig{
		Tracing:   true,
		DBName:    "postgresql",
		SlowQuery: 200 * time.Millisecond,
	}
}

const startedAtKey = "telemetry:started_at"

type dbInstruments struct {
	cfg           DBConfig
	logger        *zap.Logger
	queryTotal    *Counter
	slowTotal     *Counter
	queryDuration *Histogram
}

// InstrumentDB registers tracing and query metrics on db.
// Pool statistics are exported separately through RegisterPoolMetrics.
func InstrumentDB(db *gorm.DB, meter metric.Meter, cfg DBConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = DefaultDBConfig().SlowQuery
	}

	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
		if !cfg.IncludeQueryVars {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("failed to register otelgorm: %w", err)
		}
	}

	ins := &dbInstruments{cfg: cfg, logger: log}
	var err error
	if ins.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return err
	}
	if ins.slowTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the configured threshold", "{query}"); err != nil {
		return err
	}
	if ins.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return err
	}
	return ins.registerCallbacks(db)
}

func (ins *dbInstruments) registerCallbacks(db *gorm.DB) error {
	before := func(tx *gorm.DB) { tx.InstanceSet(startedAtKey, time.Now()) }

	cb := db.Callback()
	steps := []struct {
		name     string
		before   func(string, func(*gorm.DB)) error
		after    func(string, func(*gorm.DB)) error
		fallback string
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register, "INSERT"},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register, "SELECT"},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register, "UPDATE"},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register, "DELETE"},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register, ""},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, ""},
	}
	for _, step := range steps {
		fallback := step.fallback
		if err := step.before("telemetry:before_"+step.name, before); err != nil {
			return err
		}
		if err := step.after("telemetry:after_"+step.name, func(tx *gorm.DB) { ins.record(tx, fallback) }); err != nil {
			return err
		}
	}
	return nil
}

func (ins *dbInstruments) record(tx *gorm.DB, operation string) {
	v, ok := tx.InstanceGet(startedAtKey)
	if !ok {
		return
	}
	started, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(started)
	if operation == "" {
		operation = operationOf(tx.Statement.SQL.String())
	}

	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := []attribute.KeyValue{
		AttrDBOperation.String(operation),
		AttrDBTable.String(tx.Statement.Table),
	}
	ins.queryTotal.Inc(ctx, attrs...)
	ins.queryDuration.RecordDuration(ctx, elapsed, attrs...)
	if elapsed >= ins.cfg.SlowQuery {
		ins.slowTotal.Inc(ctx, attrs...)
		ins.logger.Warn("Slow query",
			zap.String("operation", operation),
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
		)
	}
}

func operationOf(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "OTHER"
	}
	switch op := strings.ToUpper(fields[0]); op {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return op
	default:
		return "OTHER"
	}
}

// PoolStats is a snapshot of the connection pool
type PoolStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// PoolSource reports connection pool statistics on demand
type PoolSource interface {
	Stats() (PoolStats, error)
}

// RegisterPoolMetrics exports pool statistics as observable instruments read
// from pool at each collection. A failed read skips that collection.
func RegisterPoolMetrics(meter metric.Meter, pool PoolSource) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connection requests that had to wait for a free connection"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return fmt.Errorf("failed to create pool counter: %w", err)
	}
	waited, err := meter.Float64ObservableCounter("db_pool_wait_duration_seconds",
		metric.WithDescription("Total time spent waiting for a free connection"),
		metric.WithUnit("s"))
	if err != nil {
		return fmt.Errorf("failed to create pool counter: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats, err := pool.Stats()
		if err != nil {
			return nil
		}
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		o.ObserveFloat64(waited, stats.WaitDuration.Seconds())
		return nil
	}, conns, maxConns, waits, waited)
	if err != nil {
		return fmt.Errorf("failed to register pool callback: %w", err)
	}
	return nil
}
