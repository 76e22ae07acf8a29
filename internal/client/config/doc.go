// Package config loads runtime configuration for the clinicdesk console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed CLINICDESK_, optionally read from a
//     dotenv file selected via -e or -env (see parseEnv). Real environment
//     variables win over the file.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string      base URL of the admin API
//	-t int         request timeout (seconds)
//	-d int         search debounce (milliseconds)
//	-l int         page size
//	-s string      path of the local session database
//	-log-level     debug, info, warn or error
//	-r float       outbound request rate limit per second (0 = off)
//	-m string      address to serve Prometheus metrics on (empty = off)
//	-o string      directory for booking exports
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "500ms" or
// integer nanoseconds. Absent keys keep their previous value:
//
//	{
//	  "server_base_url": "https://api.example.com/api/v1",
//	  "request_timeout": "30s",
//	  "search_debounce": "500ms",
//	  "page_size": 20,
//	  "s3_bucket": "clinicdesk-exports"
//	}
//
// Invalid files, environment values and flags panic; the CLI treats them
// as fatal startup errors.
package config
