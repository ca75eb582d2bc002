// Package config loads shopdeck configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shopdeck/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. SHOPDECK_<KEY> environment variables override file values
//  5. Blank or missing fields are restored to defaults
//
// # Default Values
//
//   - api_url: 127.0.0.1:8000
//   - request_timeout: 10s
//   - dashboard_interval: 60s
//   - orders_interval: 30s
//   - messages_interval: 30s
//   - products_limit: 20
//   - log_level: info
//   - log_format: console
//   - log_file: ~/.local/state/shopdeck/shopdeck.log
//
// Intervals use Go duration syntax. A zero interval fetches once each time
// the view is shown; negative intervals are rejected. log_file also accepts
// "stdout" and "stderr".
//
// # TOML Format
//
//	api_url = "https://shop.example.com"
//	request_timeout = "5s"
//	orders_interval = "15s"
//	log_level = "debug"
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable or malformed
// TOML, and invalid values. A missing file is not an error.
package config
