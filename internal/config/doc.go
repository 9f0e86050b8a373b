// Package config provides centralized configuration management for the sales
// dashboard. It loads configuration from multiple sources, validates it and
// exposes a typed Config to the rest of the application.
//
// # Configuration Sources
//
// Configuration is resolved in the following order of precedence:
//
//	1. Environment variables (highest priority), optionally seeded from a .env file
//	2. YAML configuration file (config.yaml, configs/config.yaml or DASH_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DASH_<SECTION>_<FIELD>:
//
//	DASH_SERVER_HOST=0.0.0.0
//	DASH_SERVER_PORT=8050
//	DASH_SERVER_DEBUG=true
//	DASH_DATA_SALES_FILE=data/sales.xlsx
//	DASH_DASHBOARD_TOP_PRODUCTS=10
//	DASH_LOGGING_LEVEL=info
//
// # Debug Mode
//
// Server.Debug enables verbose error responses and forces the debug log level.
// It is off by default and must stay off outside development.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, Default() returns a complete configuration that needs no
// environment variables or files.
package config
