// Package config handles loading and parsing the rentme configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/rentme/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. RENTME_API_BASE_URL, when set, overrides api_base_url
//
// # Default Values
//
//   - API base URL: http://127.0.0.1:8080/api/v1
//   - Session file: ~/.config/rentme/session.toml
//   - Preferences: ~/.config/rentme/prefs.toml
//   - Log file: ~/.local/share/rentme/rentme.log
//   - Catalog page size: 20, default sort: price_asc
//   - Chat list refresh: 8s, thread refresh: 7s
//   - Request timeout: 15s
//
// # TOML Format
//
//	api_base_url = "https://rent.example.com/api/v1"
//	session_path = "~/.config/rentme/session.toml"
//	log_level = "debug"
//	log_format = "json"
//	page_size = 20
//	default_sort = "price_asc"
//	chat_list_interval_ms = 8000
//	thread_interval_ms = 7000
//	request_timeout_ms = 15000
//
// All fields are optional. Tilde expansion is performed on paths.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors. A missing file is not an error.
package config
