package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/mirrosha26/CoreBackend/internal/config"
)

// Monitor wraps a QueryExecutor and logs per-query performance data.
// It is plain composition: callers that do not want monitoring use the
// Executor directly, and nothing in the execution path reaches for
// global state to find out whether monitoring is on.
type Monitor struct {
	next      QueryExecutor
	threshold time.Duration
	log       *slog.Logger
}

// WithMonitoring wraps next in a Monitor when monitoring is enabled in
// the config, otherwise returns next unchanged.
func WithMonitoring(next QueryExecutor, cfg config.QueryConfig, log *slog.Logger) QueryExecutor {
	if !cfg.PerformanceMonitoring {
		return next
	}
	return &Monitor{
		next:      next,
		threshold: cfg.SlowQueryThreshold,
		log:       log.With("component", "query_monitor"),
	}
}

// Execute delegates to the wrapped executor and logs the outcome.
// Queries slower than the configured threshold are logged at Warn with
// full diagnostics.
func (m *Monitor) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := m.next.Execute(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		m.log.Error("query failed",
			slog.String("operation", req.Tree.Operation),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	attrs := []any{
		slog.String("operation", req.Tree.Operation),
		slog.Int("complexity", res.Diagnostics.Complexity),
		slog.Int("depth", res.Diagnostics.Depth),
		slog.String("tier", string(res.Diagnostics.Tier)),
		slog.Bool("cache_hit", res.Diagnostics.CacheHit),
		slog.Int("db_queries", res.Diagnostics.DBQueries),
		slog.Duration("duration", elapsed),
	}
	if elapsed >= m.threshold {
		m.log.Warn("slow query", attrs...)
	} else {
		m.log.Debug("query executed", attrs...)
	}
	return res, nil
}
