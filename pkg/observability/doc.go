// Package observability provides structured logging, Prometheus
// metrics, health probes, and OpenTelemetry wiring for the service.
//
// # Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, nil)
//	logger.WithField("user_id", userID).Info("context selected")
//
// The With* methods derive new loggers and never mutate the receiver.
//
// # Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.AuthzDecisionsTotal.WithLabelValues("people.view", "allow").Inc()
//
// # Health
//
//	checker := observability.NewHealthChecker(db)
//	observability.RegisterHealthRoutes(mux, checker)
//
// Liveness answers while the process runs; readiness probes the
// database and reports 503 when it is unreachable.
//
// # Tracing
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: the settings these components are built from
//   - pkg/middleware: request logging and metrics middleware
package observability
