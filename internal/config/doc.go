// Package config loads courier's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use $COURIER_CONFIG when set
//  3. Otherwise, use ~/.config/courier/config.toml
//  4. If the file doesn't exist, fall back to defaults
//  5. If the file exists but fields are missing or empty, use defaults
//
// # Default Values
//
//   - API base: http://127.0.0.1:8088 (the courier-mock default)
//   - Order stage poll: 5s
//   - Wallet poll: 10s
//   - Conversation list poll: 10s
//   - Log file: ~/.local/state/courier/courier.log
//   - Log level: info
//
// # TOML Format
//
//	api_base = "https://api.example.ng"
//	api_token = "tok_..."
//	order_id = "ORD-1042"
//	rider_id = "RID-7"
//	user_id = "USR-3"
//	order_poll_seconds = 5
//	wallet_poll_seconds = 10
//	chat_poll_seconds = 10
//	log_file = "~/.local/state/courier/courier.log"
//	log_level = "info"
//
// String values are trimmed and paths may start with ~. A non-positive poll
// interval falls back to its default. The API token may instead come from
// $COURIER_API_TOKEN; a token in the file wins.
//
// # Error Handling
//
// A missing file is not an error. Unreadable files and invalid TOML are,
// wrapped as "open config", "read config" or "parse config". Validate checks
// the loaded values and joins every problem into one error.
package config
