package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/crewplane/crewplane/pkg/access"
	"github.com/crewplane/crewplane/pkg/api"
	"github.com/crewplane/crewplane/pkg/audit"
	"github.com/crewplane/crewplane/pkg/config"
	"github.com/crewplane/crewplane/pkg/menus"
	"github.com/crewplane/crewplane/pkg/observability"
	"github.com/crewplane/crewplane/pkg/storage"
	"github.com/crewplane/crewplane/pkg/tenants"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, nil)
	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		log.Fatal(err)
	}
	defer db.Close()

	// Tenant tables first; everything else references them.
	var migrations []storage.Migration
	migrations = append(migrations, tenants.Migrations()...)
	migrations = append(migrations, access.Migrations()...)
	migrations = append(migrations, menus.Migrations()...)
	migrations = append(migrations, audit.Migrations()...)
	if err := storage.Migrate(ctx, db, migrations); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		log.Fatal(err)
	}
	logger.Info("Database migrations applied")

	var metrics *observability.Metrics
	registry := prometheus.NewRegistry()
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	var auditLog audit.Logger = audit.NopLogger{}
	if cfg.Audit.Enabled {
		auditLog = audit.NewDBLogger(db)
	}
	defer auditLog.Close()

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize OpenTelemetry")
		log.Fatal(err)
	}

	server := api.NewServer(db, api.Options{
		Logger:   logger,
		Metrics:  metrics,
		AuditLog: auditLog,
	})

	var handler http.Handler = server
	if otelProviders != nil {
		handler = otelhttp.NewHandler(server, "crewplane.http")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for probes and scrapes.
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db))
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
		go func() {
			defer observability.RecoverPanic(logger, "db stats collector")
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				metrics.CollectDBStats(db)
			}
		}()
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}
	go func() {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Health server failed")
		}
	}()

	go func() {
		logger.Infof("Server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server failed")
			log.Fatal(err)
		}
	}()

	if err := observability.GracefulShutdown(logger, httpServer,
		func(ctx context.Context) error { return healthServer.Shutdown(ctx) },
		func(ctx context.Context) error { return observability.ShutdownOTel(ctx, otelProviders, logger) },
	); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
	}
}
