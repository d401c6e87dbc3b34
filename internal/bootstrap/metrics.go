package bootstrap

import (
	"context"
	"log/slog"

	"github.com/target/aihub-dashboard/config"
	"github.com/target/aihub-dashboard/internal/observability/metrics"
)

// MetricsSink is the configured sink plus a close function for shutdown.
type MetricsSink struct {
	Sink  metrics.Sink
	Close func() error
}

// BuildMetrics dials StatsD when enabled. A dial failure is logged and
// metrics fall back to Discard so the dashboard still starts.
func BuildMetrics(ctx context.Context, cfg config.ObservabilityConfig, logger *slog.Logger) MetricsSink {
	if logger == nil {
		logger = slog.Default()
	}
	noop := MetricsSink{Sink: metrics.Discard, Close: func() error { return nil }}
	if !cfg.MetricsEnabled {
		return noop
	}

	var tags metrics.Tags
	if cfg.Environment != "" {
		tags = metrics.Tags{"env": cfg.Environment}
	}
	client, err := metrics.DialStatsd(ctx, metrics.StatsdConfig{
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Tags:    tags,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
		return noop
	}
	logger.Info("statsd metrics enabled", "address", cfg.StatsdAddress, "prefix", cfg.Prefix)
	return MetricsSink{Sink: client, Close: client.Close}
}
