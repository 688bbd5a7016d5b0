// Package config loads service configuration from an optional YAML file
// and CREWPLANE_* environment variables, with the environment winning.
//
// # Overview
//
// LoadConfig starts from defaults, merges the file named by
// CREWPLANE_CONFIG_FILE if set, applies environment overrides, and
// validates the result.
//
// # Settings
//
// Server:
//
//	CREWPLANE_HOST="0.0.0.0"
//	CREWPLANE_PORT="8080"
//	CREWPLANE_HEALTH_PORT="8081"
//	CREWPLANE_READ_TIMEOUT="30s"
//	CREWPLANE_WRITE_TIMEOUT="30s"
//	CREWPLANE_IDLE_TIMEOUT="120s"
//	CREWPLANE_SHUTDOWN_TIMEOUT="30s"
//
// Storage:
//
//	CREWPLANE_POSTGRES_URL="postgres://localhost/crewplane"
//	CREWPLANE_POSTGRES_MAX_CONNS="20"
//	CREWPLANE_POSTGRES_MIN_CONNS="2"
//	CREWPLANE_POSTGRES_TIMEOUT="5s"
//
// Audit:
//
//	CREWPLANE_AUDIT_ENABLED="true"
//	CREWPLANE_AUDIT_RETENTION="2160h"
//
// Observability:
//
//	CREWPLANE_LOG_LEVEL="info"  # debug, info, warn, error
//	CREWPLANE_METRICS_ENABLED="true"
//	CREWPLANE_OTEL_ENABLED="false"
//	CREWPLANE_OTEL_ENDPOINT="otel-collector:4317"
//	CREWPLANE_OTEL_SERVICE_NAME="crewplane"
//	CREWPLANE_OTEL_SERVICE_VERSION="dev"
//	CREWPLANE_OTEL_INSECURE="false"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("listening on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
package config
