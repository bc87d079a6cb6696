// Package config loads runtime configuration for the Mandaditos client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed MANDADITOS_, after loading a .env file
//     (the one named by -env, else ./.env when present).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string      address:port of the gRPC endpoint
//	-u string      base URL of the HTTP endpoint
//	-t string      transport: grpc or http
//	-i int         online status check interval (seconds)
//	-s int         per-call sync timeout (seconds)
//	-d string      local database file
//	-n string      device name sent at login
//	-log string    log file (rotated)
//	-level string  log level
//
// # JSON schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "server_url": "http://127.0.0.1:8080",
//	  "transport": "grpc",
//	  "online_check_interval": "3s",
//	  "sync_timeout": "10s",
//	  "database_path": "mandaditos.db",
//	  "device_name": "front-desk",
//	  "log_file": "mandaditos.log",
//	  "log_level": "info"
//	}
//
// The access key is only read from MANDADITOS_ACCESS_KEY or prompted for.
package config
