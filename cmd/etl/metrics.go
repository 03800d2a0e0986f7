package main

import (
	"sparkify/internal/config"
	"sparkify/internal/logging"
	"sparkify/internal/metrics"
	"sparkify/internal/metrics/datadog"
	"sparkify/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it at exit. A backend that fails to start leaves the
// no-op backend in place; metrics never fail a run.
func setupMetrics(job string, cfg config.Metrics) (flush func()) {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(job, cfg.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.DatadogAddr,
			Namespace:  cfg.Namespace,
			GlobalTags: cfg.Tags,
		})
	case "", "none":
		logging.Debug().Msg("metrics: disabled")
		return func() {}
	default:
		logging.Warn().Str("backend", cfg.Backend).Msg("metrics: unknown backend; metrics disabled")
		return func() {}
	}
	if err != nil {
		logging.Warn().Err(err).Str("backend", cfg.Backend).Msg("metrics: init failed; using nop")
		return func() {}
	}

	logging.Info().Str("backend", cfg.Backend).Str("job", job).Msg("metrics: enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logging.Warn().Err(err).Msg("metrics: flush error")
		}
	}
}
