// Package config provides application configuration management from YAML
// files and environment variables.
//
// # Overview
//
// This package loads and validates configuration with sensible defaults
// for all settings except the owner identity, which must be supplied.
// Environment variables override file values.
//
// # Configuration Structure
//
// Engine settings:
//
//	TURNSTILE_OWNER="0xdeadbeef"
//	TURNSTILE_PREMIUM_FEE_USD="10"
//	TURNSTILE_PLUS_FEE_USD="5"
//	TURNSTILE_PLUS_PERIOD="720h"
//	TURNSTILE_MAX_PERIODS="12"
//	TURNSTILE_ORACLE_MAX_STALE="1h"
//
// Observability settings:
//
//	TURNSTILE_LOG_LEVEL="info"  # debug, info, warn, error
//	TURNSTILE_METRICS_ENABLED="true"
//	TURNSTILE_EVENT_JOURNAL_SIZE="1000"
//
// # Usage Example
//
// Load configuration and construct the engine:
//
//	cfg, err := config.LoadFile("turnstile.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	svc, err := registry.New(cfg.Registry(), cfg.Owner(), feed, transfer)
//
// # Related Packages
//
//   - pkg/registry: Consumes the engine configuration
//   - pkg/observability: Consumes the observability configuration
package config
