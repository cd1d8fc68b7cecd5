package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls gorm query spans
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound values in db.statement; customer data leaks into traces when set
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
	DBName             string
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

const startedAtKey = "telemetry:started_at"

// RegisterDBTracing installs otelgorm plus callbacks that tag each span
// with the table, affected rows and a slow query marker.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) { tx.InstanceSet(startedAtKey, time.Now()) }
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThreshold) }

	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("storefront:before_create", before),
		cb.Query().Before("gorm:query").Register("storefront:before_query", before),
		cb.Update().Before("gorm:update").Register("storefront:before_update", before),
		cb.Delete().Before("gorm:delete").Register("storefront:before_delete", before),
		cb.Row().Before("gorm:row").Register("storefront:before_row", before),
		cb.Raw().Before("gorm:raw").Register("storefront:before_raw", before),
		cb.Create().After("gorm:create").Before("after:create").Register("storefront:after_create", after),
		cb.Query().After("gorm:query").Before("after:select").Register("storefront:after_query", after),
		cb.Update().After("gorm:update").Before("after:update").Register("storefront:after_update", after),
		cb.Delete().After("gorm:delete").Before("after:delete").Register("storefront:after_delete", after),
		cb.Row().After("gorm:row").Before("after:row").Register("storefront:after_row", after),
		cb.Raw().After("gorm:raw").Before("after:raw").Register("storefront:after_raw", after),
	)
	if err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, slow time.Duration) {
	if tx.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(tx.Statement.Context)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))

	v, ok := tx.InstanceGet(startedAtKey)
	if !ok {
		return
	}
	if elapsed := time.Since(v.(time.Time)); elapsed > slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
